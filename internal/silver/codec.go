package silver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"fx-rates-pipeline/internal/model"
)

// encodePartition serialises records as snappy-compressed JSON lines. One
// block per partition keeps the file self-contained and byte-stable for
// identical inputs.
func encodePartition(records []model.RateRecord) ([]byte, error) {
	var buf bytes.Buffer
	for _, rec := range records {
		line, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal record %s: %w", rec.Key(), err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return snappy.Encode(nil, buf.Bytes()), nil
}

// decodePartition reverses encodePartition.
func decodePartition(data []byte) ([]model.RateRecord, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("decompress partition: %w", err)
	}

	var records []model.RateRecord
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec model.RateRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("decode record line: %w", err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan partition: %w", err)
	}
	return records, nil
}
