package credentials_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NickSmet/mcp-local-memory/pkg/credentials"
)

func TestCredentials(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Credentials Suite")
}

var _ = Describe("Manager", func() {
	var tmpDir string
	var m *credentials.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "credentials-test-*")
		Expect(err).NotTo(HaveOccurred())

		m, err = credentials.NewManager(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Load", func() {
		It("returns empty credentials when no file exists", func() {
			creds, err := m.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(creds.Providers).To(BeEmpty())
		})

		It("rejects a malformed file", func() {
			path := filepath.Join(tmpDir, "credentials.toml")
			Expect(os.WriteFile(path, []byte("not [valid toml"), 0o600)).To(Succeed())

			_, err := m.Load()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SetKey / GetKey", func() {
		It("round-trips a stored key", func() {
			Expect(m.SetKey("openai", "sk-test-123")).To(Succeed())

			key, err := m.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-test-123"))
		})

		It("returns empty for an unknown provider", func() {
			key, err := m.GetKey("nope")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})

		It("writes the file with owner-only permissions", func() {
			Expect(m.SetKey("openai", "sk-test-123")).To(Succeed())

			info, err := os.Stat(m.GetTarget())
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0o600)))
		})
	})

	Describe("Resolve", func() {
		It("prefers the environment variable over the stored file", func() {
			Expect(m.SetKey("openai", "sk-stored")).To(Succeed())
			GinkgoT().Setenv("OPENAI_API_KEY", "sk-from-env")

			key, err := m.Resolve("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-from-env"))
		})

		It("falls back to the stored file when the env var is unset", func() {
			Expect(m.SetKey("openai", "sk-stored")).To(Succeed())
			GinkgoT().Setenv("OPENAI_API_KEY", "")

			key, err := m.Resolve("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(Equal("sk-stored"))
		})
	})

	Describe("RemoveKey", func() {
		It("removes a stored credential", func() {
			Expect(m.SetKey("openai", "sk-test")).To(Succeed())
			Expect(m.RemoveKey("openai")).To(Succeed())

			key, err := m.GetKey("openai")
			Expect(err).NotTo(HaveOccurred())
			Expect(key).To(BeEmpty())
		})

		It("is a no-op for an absent provider", func() {
			Expect(m.RemoveKey("nope")).To(Succeed())
		})
	})

	Describe("ListProviders", func() {
		It("lists stored providers sorted", func() {
			Expect(m.SetKey("zeta", "z")).To(Succeed())
			Expect(m.SetKey("alpha", "a")).To(Succeed())

			providers, err := m.ListProviders()
			Expect(err).NotTo(HaveOccurred())
			Expect(providers).To(Equal([]string{"alpha", "zeta"}))
		})
	})
})

var _ = Describe("EnvVarForProvider", func() {
	It("maps openai to OPENAI_API_KEY", func() {
		Expect(credentials.EnvVarForProvider("openai")).To(Equal("OPENAI_API_KEY"))
	})

	It("returns empty for unknown providers", func() {
		Expect(credentials.EnvVarForProvider("nope")).To(BeEmpty())
	})
})

var _ = Describe("SupportedProviders", func() {
	It("includes openai", func() {
		Expect(credentials.SupportedProviders()).To(ContainElement("openai"))
	})
})

var _ = Describe("IsSupportedProvider", func() {
	It("accepts supported providers and rejects others", func() {
		Expect(credentials.IsSupportedProvider("openai")).To(BeTrue())
		Expect(credentials.IsSupportedProvider("codex")).To(BeFalse())
	})
})
