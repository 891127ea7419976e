package upload

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// pdfMagic is the fixed leading byte sequence of a PDF file ("%PDF").
var pdfMagic = []byte{0x25, 0x50, 0x44, 0x46}

// SignatureValidator checks a payload's leading bytes against a file
// format's magic signature.
type SignatureValidator struct {
	magic []byte
}

// NewSignatureValidator returns a validator for the given magic bytes.
func NewSignatureValidator(magic []byte) SignatureValidator {
	return SignatureValidator{magic: magic}
}

// Matches reports whether header starts with the magic signature. A header
// shorter than the signature does not match.
func (v SignatureValidator) Matches(header []byte) bool {
	return bytes.HasPrefix(header, v.magic)
}

// Len returns the signature length, i.e. how many leading bytes Matches
// needs to see.
func (v SignatureValidator) Len() int {
	return len(v.magic)
}

// Pipeline applies the admission checks for one upload in a fixed order:
// extension, declared content type, size, binary signature. The first
// failing check determines the rejection reason. The signature check is the
// authoritative one; the earlier checks only reject cheap spoofs early.
type Pipeline struct {
	extension   string
	contentType string
	maxBytes    int64
	signature   SignatureValidator
}

// NewPDFPipeline returns a pipeline admitting PDF uploads up to maxBytes.
func NewPDFPipeline(maxBytes int64) *Pipeline {
	return &Pipeline{
		extension:   ".pdf",
		contentType: "application/pdf",
		maxBytes:    maxBytes,
		signature:   NewSignatureValidator(pdfMagic),
	}
}

// ContentType returns the MIME type admitted uploads are stored under.
func (p *Pipeline) ContentType() string {
	return p.contentType
}

// MaxBytes returns the configured size ceiling.
func (p *Pipeline) MaxBytes() int64 {
	return p.maxBytes
}

// Admit runs all checks against the request. Only the leading signature
// window is read from the payload; the reader is rewound before returning.
// The error return is reserved for payload read failures.
func (p *Pipeline) Admit(req *Request) (Verdict, error) {
	if strings.ToLower(filepath.Ext(req.Filename)) != p.extension {
		return rejected(ReasonInvalidExtension, "Only PDF files are allowed"), nil
	}

	if !strings.EqualFold(strings.TrimSpace(req.ContentType), p.contentType) {
		return rejected(ReasonInvalidContentType,
			fmt.Sprintf("Content-Type must be %s", p.contentType)), nil
	}

	if req.Size <= 0 {
		return rejected(ReasonEmpty, "File is empty"), nil
	}
	if req.Size > p.maxBytes {
		return rejected(ReasonTooLarge,
			fmt.Sprintf("File size exceeds %dMB limit", p.maxBytes/(1024*1024))), nil
	}

	header := make([]byte, p.signature.Len())
	n, err := io.ReadFull(req.Content, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return Verdict{}, fmt.Errorf("read signature window: %w", err)
	}
	if _, err := req.Content.Seek(0, io.SeekStart); err != nil {
		return Verdict{}, fmt.Errorf("rewind payload: %w", err)
	}
	if !p.signature.Matches(header[:n]) {
		return rejected(ReasonInvalidSignature, "File is not a valid PDF"), nil
	}

	return admitted(), nil
}
