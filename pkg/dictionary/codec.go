package dictionary

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/freqdict/pkg/clean"
)

// formatCount renders integral counts without a fraction.
func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatAny renders a decoded scalar as raw count text. Absent values become "".
func formatAny(v any) string {
	switch n := v.(type) {
	case nil:
		return ""
	case string:
		return n
	case []byte:
		return string(n)
	case float64:
		return formatCount(n)
	case float32:
		return formatCount(float64(n))
	case int:
		return strconv.FormatInt(int64(n), 10)
	case int8:
		return strconv.FormatInt(int64(n), 10)
	case int16:
		return strconv.FormatInt(int64(n), 10)
	case int32:
		return strconv.FormatInt(int64(n), 10)
	case int64:
		return strconv.FormatInt(n, 10)
	case uint8:
		return strconv.FormatUint(uint64(n), 10)
	case uint16:
		return strconv.FormatUint(uint64(n), 10)
	case uint32:
		return strconv.FormatUint(uint64(n), 10)
	case uint64:
		return strconv.FormatUint(n, 10)
	}
	// objects, arrays and booleans are kept verbatim so validation rejects them
	return fmt.Sprint(v)
}

// mapRows converts a decoded object into raw rows sorted by word.
func mapRows(m map[string]any) []clean.RawRow {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]clean.RawRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, clean.RawRow{Word: k, Count: formatAny(m[k])})
	}
	return rows
}

// rowsMap builds the object form of rows. A later duplicate word replaces an earlier one.
func rowsMap(rows []clean.Row) map[string]any {
	m := make(map[string]any, len(rows))
	dups := 0
	for _, r := range rows {
		if _, ok := m[r.Word]; ok {
			dups++
		}
		if r.Count == math.Trunc(r.Count) && math.Abs(r.Count) < 1<<53 {
			m[r.Word] = int64(r.Count)
		} else {
			m[r.Word] = r.Count
		}
	}
	if dups > 0 {
		log.Warnf("%d duplicate words collapsed, last occurrence kept", dups)
	}
	return m
}

// ReadJSON reads a {"word": count} object.
func ReadJSON(r io.Reader) ([]clean.RawRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	var m map[string]any
	if err := sonic.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode JSON object: %w", err)
	}
	return mapRows(m), nil
}

// WriteJSON writes rows as a single {"word": count} object with sorted keys.
func WriteJSON(w io.Writer, rows []clean.Row) error {
	data, err := sonic.ConfigStd.Marshal(rowsMap(rows))
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ReadMsgpack reads a msgpack map of word to count.
func ReadMsgpack(r io.Reader) ([]clean.RawRow, error) {
	var m map[string]any
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("failed to decode msgpack map: %w", err)
	}
	return mapRows(m), nil
}

// WriteMsgpack writes rows as a msgpack map with sorted keys.
func WriteMsgpack(w io.Writer, rows []clean.Row) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(rowsMap(rows)); err != nil {
		return fmt.Errorf("failed to encode msgpack: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
