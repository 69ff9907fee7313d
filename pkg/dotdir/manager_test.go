package dotdir_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NickSmet/mcp-local-memory/pkg/dotdir"
)

func TestDotdir(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Dotdir Suite")
}

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Target", func() {
		It("creates the directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns an existing directory without error", func() {
			result, err := m.Target(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(tmpDir))
		})
	})

	Describe("mode state", func() {
		It("returns nil for a fresh directory", func() {
			state, err := m.LoadModeState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())
		})

		It("round-trips the persisted state", func() {
			saved := &dotdir.ModeState{Active: "ollama-nomic", Previous: "hash-local"}
			Expect(m.SaveModeState(saved, tmpDir)).To(Succeed())

			loaded, err := m.LoadModeState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).NotTo(BeNil())
			Expect(loaded.Active).To(Equal("ollama-nomic"))
			Expect(loaded.Previous).To(Equal("hash-local"))
			Expect(loaded.SwitchedAt).NotTo(BeZero())
		})

		It("stamps SwitchedAt when the caller leaves it zero", func() {
			before := time.Now().Add(-time.Second)
			state := &dotdir.ModeState{Active: "hash-local"}
			Expect(m.SaveModeState(state, tmpDir)).To(Succeed())
			Expect(state.SwitchedAt.After(before)).To(BeTrue())
		})

		It("rejects a nil state", func() {
			Expect(m.SaveModeState(nil, tmpDir)).To(HaveOccurred())
		})

		It("clears the state idempotently", func() {
			Expect(m.SaveModeState(&dotdir.ModeState{Active: "hash-local"}, tmpDir)).To(Succeed())
			Expect(m.ClearModeState(tmpDir)).To(Succeed())

			state, err := m.LoadModeState(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(BeNil())

			// Clearing again is not an error.
			Expect(m.ClearModeState(tmpDir)).To(Succeed())
		})

		It("rejects a corrupt state file", func() {
			path := filepath.Join(tmpDir, "mode.json")
			Expect(os.WriteFile(path, []byte("{not json"), 0o600)).To(Succeed())

			_, err := m.LoadModeState(tmpDir)
			Expect(err).To(HaveOccurred())
		})
	})
})
