package bluelist

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // HMAC-SHA1 is what the POST policy scheme signs with
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// PolicyTTL is how long an issued upload policy stays valid.
	PolicyTTL = 5 * time.Minute
	// MaxUploadBytes is the upper bound of the content-length-range condition.
	MaxUploadBytes = 524288000
	// UploadACL is the canned ACL every policy pins.
	UploadACL = "public-read"
	// ExpirationFormat is ISO-8601 UTC with millisecond precision.
	ExpirationFormat = "2006-01-02T15:04:05.000Z"
)

// SecretStore resolves the signing secret for an access key.
type SecretStore interface {
	Lookup(accessKey string) (secretKey string, err error)
}

// PolicyDocument is the upload authorization handed to the object store.
// Conditions keep their order when encoded.
type PolicyDocument struct {
	Expiration string `json:"expiration"`
	Conditions []any  `json:"conditions"`
}

// SignedPolicy is the response of the signing endpoint. It never carries the
// secret.
type SignedPolicy struct {
	Bucket    string `json:"bucket"`
	AccessKey string `json:"awsKey"`
	Policy    string `json:"policy"`
	Signature string `json:"signature"`
}

// NewPolicyDocument builds the policy for uploading fileName into bucket,
// expiring PolicyTTL after now.
func NewPolicyDocument(fileName, bucket string, now time.Time) PolicyDocument {
	return PolicyDocument{
		Expiration: now.UTC().Add(PolicyTTL).Format(ExpirationFormat),
		Conditions: []any{
			map[string]string{"bucket": bucket},
			map[string]string{"key": fileName},
			map[string]string{"acl": UploadACL},
			[]any{"starts-with", "$Content-Type", ""},
			[]any{"content-length-range", 0, MaxUploadBytes},
		},
	}
}

// Encode serializes the document as compact JSON and returns it base64
// encoded with the standard alphabet.
func (p PolicyDocument) Encode() (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return "", fmt.Errorf("encode policy: %w", err)
	}
	raw := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return base64.StdEncoding.EncodeToString(raw), nil
}

// GeneratePolicy builds, encodes and signs an upload policy for fileName.
//
// The signature is base64(HMAC-SHA1(secret, policy)) computed over the ASCII
// bytes of the base64 policy. fileName must be non-empty; nothing else about
// it is checked.
func GeneratePolicy(fileName, bucket string, secret []byte, now time.Time) (policy, signature string, err error) {
	if fileName == "" {
		return "", "", fmt.Errorf("generate policy: %w: file name cannot be empty", ErrInvalidInput)
	}

	policy, err = NewPolicyDocument(fileName, bucket, now).Encode()
	if err != nil {
		return "", "", fmt.Errorf("generate policy: %w", err)
	}

	return policy, signPolicy(policy, secret), nil
}

// VerifyPolicy reports whether signature was produced over policy with secret.
func VerifyPolicy(policy, signature string, secret []byte) bool {
	expected := signPolicy(policy, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// DecodePolicy reverses PolicyDocument.Encode.
func DecodePolicy(policy string) (PolicyDocument, error) {
	raw, err := base64.StdEncoding.DecodeString(policy)
	if err != nil {
		return PolicyDocument{}, fmt.Errorf("decode policy: %w", err)
	}
	var doc PolicyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return PolicyDocument{}, fmt.Errorf("decode policy: %w", err)
	}
	return doc, nil
}

func signPolicy(policy string, secret []byte) string {
	h := hmac.New(sha1.New, secret)
	h.Write([]byte(policy))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// PolicySigner issues signed upload policies for one bucket and access key.
type PolicySigner struct {
	bucket    string
	accessKey string
	secret    []byte
	now       func() time.Time
}

// SignerOption configures a PolicySigner.
type SignerOption func(*PolicySigner)

// WithClock replaces the signer's wall clock.
func WithClock(now func() time.Time) SignerOption {
	return func(s *PolicySigner) {
		s.now = now
	}
}

// NewPolicySigner resolves the secret for accessKey from secrets and returns
// a signer for bucket.
//
// Parameters:
//   - bucket: Target bucket name pinned in every policy
//   - accessKey: Public access key returned to clients
//   - secrets: Store holding the secret for accessKey
func NewPolicySigner(bucket, accessKey string, secrets SecretStore, opts ...SignerOption) (*PolicySigner, error) {
	if bucket == "" {
		return nil, fmt.Errorf("new policy signer: %w: bucket cannot be empty", ErrInvalidInput)
	}
	if accessKey == "" {
		return nil, fmt.Errorf("new policy signer: %w: access key cannot be empty", ErrInvalidInput)
	}

	secret, err := secrets.Lookup(accessKey)
	if err != nil {
		return nil, fmt.Errorf("new policy signer: %w", err)
	}
	if secret == "" {
		return nil, fmt.Errorf("new policy signer: %w: empty secret for access key", ErrUnauthorized)
	}

	s := &PolicySigner{
		bucket:    bucket,
		accessKey: accessKey,
		secret:    []byte(secret),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Bucket returns the bucket the signer pins.
func (s *PolicySigner) Bucket() string {
	return s.bucket
}

// Sign issues a policy for uploading fileName.
func (s *PolicySigner) Sign(fileName string) (SignedPolicy, error) {
	policy, signature, err := GeneratePolicy(fileName, s.bucket, s.secret, s.now())
	if err != nil {
		return SignedPolicy{}, err
	}
	return SignedPolicy{
		Bucket:    s.bucket,
		AccessKey: s.accessKey,
		Policy:    policy,
		Signature: signature,
	}, nil
}
