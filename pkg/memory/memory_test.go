package memory_test

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NickSmet/mcp-local-memory/pkg/memory"
)

func TestMemory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Memory Suite")
}

var _ = Describe("NormalizeTags", func() {
	It("trims whitespace and drops blanks", func() {
		Expect(memory.NormalizeTags([]string{" a ", "", "  ", "b"})).To(Equal([]string{"a", "b"}))
	})

	It("de-duplicates exact repeats", func() {
		Expect(memory.NormalizeTags([]string{"infra", "db", "infra"})).To(Equal([]string{"infra", "db"}))
	})

	It("keeps case variants as distinct stored tags", func() {
		Expect(memory.NormalizeTags([]string{"Infra", "infra", "db"})).To(Equal([]string{"Infra", "infra", "db"}))
	})

	It("preserves order", func() {
		Expect(memory.NormalizeTags([]string{"c", "a", "b"})).To(Equal([]string{"c", "a", "b"}))
	})
})

var _ = Describe("Memory", func() {
	It("matches tags case-insensitively", func() {
		m := memory.Memory{Tags: []string{"Infra", "DB"}}
		Expect(m.HasTag("infra")).To(BeTrue())
		Expect(m.HasTag("db")).To(BeTrue())
		Expect(m.HasTag("app")).To(BeFalse())
	})
})

var _ = Describe("error taxonomy", func() {
	It("classifies validation errors through wrapping", func() {
		err := fmt.Errorf("adding memory: %w", memory.Validationf("text is required"))
		Expect(memory.IsValidation(err)).To(BeTrue())
		Expect(memory.IsNotFound(err)).To(BeFalse())
	})

	It("classifies not-found errors through wrapping", func() {
		err := fmt.Errorf("lookup: %w", memory.NotFoundError{Kind: "memory", ID: "abc"})
		Expect(memory.IsNotFound(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("memory not found: abc"))
	})

	It("unwraps provider errors to their cause", func() {
		cause := errors.New("connection refused")
		err := memory.ProviderError{Provider: "ollama", Op: "embed", Err: cause}
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("unwraps authentication errors to their cause", func() {
		cause := errors.New("401")
		err := memory.AuthenticationError{Provider: "openai", Err: cause}
		Expect(errors.Is(err, cause)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("openai"))
	})

	It("unwraps consistency errors to their cause", func() {
		cause := errors.New("disk I/O error")
		err := memory.ConsistencyError{Op: "create memory", Err: cause}
		Expect(errors.Is(err, cause)).To(BeTrue())
	})
})
