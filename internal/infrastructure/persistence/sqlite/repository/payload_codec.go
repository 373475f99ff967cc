package repository

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/klauspost/compress/gzip"

	"procissue/internal/domain/processing"
	"procissue/internal/errs"
)

func encodePayload(payload processing.Payload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errs.Wrap(err, "marshal payload")
	}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, errs.Wrap(err, "compress payload")
	}
	if err := zw.Close(); err != nil {
		return nil, errs.Wrap(err, "flush payload")
	}
	return buf.Bytes(), nil
}

func decodePayload(data []byte) (processing.Payload, error) {
	if len(data) == 0 {
		return processing.Payload{}, nil
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return processing.Payload{}, errs.Wrap(err, "open payload")
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return processing.Payload{}, errs.Wrap(err, "decompress payload")
	}

	var payload processing.Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return processing.Payload{}, errs.Wrap(err, "unmarshal payload")
	}
	return payload, nil
}
