package model

import (
	"encoding/base64"
	"fmt"
)

// EncodingBase64 marks a wire payload whose content is base64 of raw bytes.
const EncodingBase64 = "base64"

// Payload is the body of a companion file: either Text or Binary.
type Payload interface {
	// Bytes returns the raw file bytes.
	Bytes() []byte
	isPayload()
}

// Text is a UTF-8 companion payload.
type Text string

// Binary is a raw companion payload, base64-encoded on the wire.
type Binary []byte

// Bytes implements Payload.
func (t Text) Bytes() []byte { return []byte(t) }

// Bytes implements Payload.
func (b Binary) Bytes() []byte { return []byte(b) }

func (Text) isPayload()   {}
func (Binary) isPayload() {}

// EncodePayload returns the wire content and encoding for a payload.
// Text payloads have an empty encoding.
func EncodePayload(p Payload) (content, encoding string) {
	switch v := p.(type) {
	case Text:
		return string(v), ""
	case Binary:
		return base64.StdEncoding.EncodeToString(v), EncodingBase64
	default:
		return "", ""
	}
}

// DecodePayload builds a payload from its wire content and encoding.
func DecodePayload(content, encoding string) (Payload, error) {
	switch encoding {
	case "":
		return Text(content), nil
	case EncodingBase64:
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 payload: %w", err)
		}
		return Binary(data), nil
	default:
		return nil, fmt.Errorf("unknown payload encoding %q", encoding)
	}
}
