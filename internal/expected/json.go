package expected

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// UnmarshalJSON accepts either a bare count or the full object.
func (r *RowExpectation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] != '{' {
		var count int
		if err := json.Unmarshal(data, &count); err != nil {
			return err
		}
		*r = RowExpectation{Count: count}
		return nil
	}

	type plain RowExpectation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = RowExpectation(p)
	return nil
}

// LoadJSON reads a table such as
//
//	{"section": "VIP CENTRAL", "total": 144, "rows": {"A": 26, "8": {"count": 21, "first": 26, "last": 46}}}
func LoadJSON(r io.Reader) (*Table, error) {
	var doc struct {
		Section string                    `json:"section"`
		Total   int                       `json:"total"`
		Rows    map[string]RowExpectation `json:"rows"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	table := &Table{Section: doc.Section, DeclaredTotal: doc.Total, Rows: doc.Rows}
	if err := table.validate(); err != nil {
		return nil, err
	}
	return table, nil
}
