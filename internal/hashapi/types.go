package hashapi

// Algorithm names a digest the hash service supports.
type Algorithm string

// Supported algorithms, spelled the way the service and the selector use them.
const (
	AlgorithmMD5    Algorithm = "MD5"
	AlgorithmSHA256 Algorithm = "SHA-256"
	AlgorithmSHA512 Algorithm = "SHA-512"
)

// DefaultAlgorithm is preselected on a fresh form.
const DefaultAlgorithm = AlgorithmMD5

// Algorithms returns the supported algorithms in selector order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmMD5, AlgorithmSHA256, AlgorithmSHA512}
}

// Valid reports whether a is one of the supported algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmMD5, AlgorithmSHA256, AlgorithmSHA512:
		return true
	}
	return false
}

// GenerateRequest is the body of POST /generate-hash.
type GenerateRequest struct {
	Data      string    `json:"data"`
	Algorithm Algorithm `json:"algorithm"`
}

// VerifyRequest is the body of POST /verify-hash.
type VerifyRequest struct {
	Data      string    `json:"data"`
	HashValue string    `json:"hash_value"`
	Algorithm Algorithm `json:"algorithm"`
}

// HashResult is a generated digest as reported by the service.
type HashResult struct {
	Algorithm string
	HashValue string
}

// VerificationResult is the service's verdict on a digest.
type VerificationResult struct {
	IsValid bool
	Message string
}
