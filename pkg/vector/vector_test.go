package vector_test

import (
	"math"
	"math/rand"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/NickSmet/mcp-local-memory/pkg/vector"
)

func TestVector(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Vector Suite")
}

var _ = Describe("Normalize", func() {
	It("scales a vector to unit length", func() {
		v := vector.Normalize([]float32{3, 4})
		Expect(v[0]).To(BeNumerically("~", 0.6, 1e-6))
		Expect(v[1]).To(BeNumerically("~", 0.8, 1e-6))

		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		Expect(math.Sqrt(sum)).To(BeNumerically("~", 1.0, 1e-6))
	})

	It("leaves a zero vector unchanged", func() {
		v := vector.Normalize([]float32{0, 0, 0})
		Expect(v).To(Equal([]float32{0, 0, 0}))
	})

	It("leaves an already-unit vector unchanged", func() {
		v := vector.Normalize([]float32{1, 0, 0})
		Expect(v[0]).To(BeNumerically("~", 1.0, 1e-6))
		Expect(v[1]).To(BeZero())
	})
})

var _ = Describe("Dot", func() {
	It("computes the dot product", func() {
		Expect(vector.Dot([]float32{1, 2, 3}, []float32{4, 5, 6})).To(BeNumerically("~", 32.0, 1e-6))
	})

	It("equals cosine similarity for unit vectors", func() {
		a := vector.Normalize([]float32{1, 1})
		b := vector.Normalize([]float32{1, 0})
		Expect(vector.Dot(a, b)).To(BeNumerically("~", math.Cos(math.Pi/4), 1e-6))
	})

	It("returns 1 for identical unit vectors", func() {
		a := vector.Normalize([]float32{2, 3, 5})
		Expect(vector.Dot(a, a)).To(BeNumerically("~", 1.0, 1e-6))
	})

	It("uses the shorter length when lengths differ", func() {
		Expect(vector.Dot([]float32{1, 2}, []float32{3, 4, 5})).To(BeNumerically("~", 11.0, 1e-6))
	})

	It("equals cosine similarity for random normalized pairs", func() {
		rng := rand.New(rand.NewSource(1))
		for trial := 0; trial < 50; trial++ {
			a := make([]float32, 64)
			b := make([]float32, 64)
			for i := range a {
				a[i] = rng.Float32()*2 - 1
				b[i] = rng.Float32()*2 - 1
			}

			// Cosine from the raw vectors: dot(a,b) / (|a||b|).
			var dot, na, nb float64
			for i := range a {
				dot += float64(a[i]) * float64(b[i])
				na += float64(a[i]) * float64(a[i])
				nb += float64(b[i]) * float64(b[i])
			}
			cosine := dot / (math.Sqrt(na) * math.Sqrt(nb))

			got := vector.Dot(vector.Normalize(a), vector.Normalize(b))
			Expect(got).To(BeNumerically("~", cosine, 1e-5))
		}
	})
})

var _ = Describe("Serialize", func() {
	It("round-trips through Deserialize", func() {
		in := []float32{0.25, -1.5, 3.125, 0}
		out, err := vector.Deserialize(vector.Serialize(in))
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(in))
	})

	It("produces four bytes per component", func() {
		Expect(vector.Serialize([]float32{1, 2, 3})).To(HaveLen(12))
	})

	It("rejects blobs whose length is not divisible by four", func() {
		_, err := vector.Deserialize([]byte{1, 2, 3})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Mode", func() {
	It("parses every registered mode name", func() {
		for _, m := range vector.Modes {
			parsed, err := vector.ParseMode(m.String())
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(m))
		}
	})

	It("rejects unknown names", func() {
		_, err := vector.ParseMode("word2vec")
		Expect(err).To(MatchError(vector.ErrUnknownMode))
	})

	It("declares fixed namespace dimensions", func() {
		Expect(vector.ModeOpenAISmall.Namespace().Dimensions).To(Equal(1536))
		Expect(vector.ModeOllamaNomic.Namespace().Dimensions).To(Equal(768))
		Expect(vector.ModeHashLocal.Namespace().Dimensions).To(Equal(256))
	})

	It("gives each mode a distinct table", func() {
		tables := map[string]bool{}
		for _, m := range vector.Modes {
			tables[m.Namespace().Table] = true
		}
		Expect(tables).To(HaveLen(len(vector.Modes)))
	})
})
