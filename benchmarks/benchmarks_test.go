package benchmarks_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mips5sim/benchmarks"
)

var _ = Describe("Harness", func() {
	It("runs every canned kernel to completion and reports a positive CPI", func() {
		h := benchmarks.NewHarness(benchmarks.DefaultConfig())
		results := h.RunAll(benchmarks.Kernels())

		Expect(results).To(HaveLen(3))
		for _, r := range results {
			Expect(r.Instructions).To(BeNumerically(">", 0))
			Expect(r.CPI).To(BeNumerically(">", 0))
		}
	})

	It("prints a CSV table with a header row and a row per result", func() {
		h := benchmarks.NewHarness(benchmarks.DefaultConfig())
		results := h.RunAll(benchmarks.Kernels())

		var buf bytes.Buffer
		benchmarks.PrintCSV(&buf, results)

		Expect(buf.String()).To(ContainSubstring("name,cycles,instructions"))
		Expect(buf.String()).To(ContainSubstring("tight_loop"))
	})
})
