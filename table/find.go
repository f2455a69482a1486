package table

import (
	"encoding/json"
	"fmt"

	"github.com/SierraSoftworks/connor"
)

// Find calls f for every row matching filter in handle order. skip rows are
// matched but not returned. limit <= 0 means no limit. An empty filter
// matches every row.
func (t *Table) Find(filter map[string]interface{}, skip, limit int, f func(row *Row) bool) error {

	hasFilter := len(filter) > 0

	var err error
	t.Traverse(func(row *Row) bool {

		if hasFilter {
			rowData := map[string]interface{}{}
			err = json.Unmarshal(row.Payload, &rowData)
			if err != nil {
				// not an object, nothing to match against
				err = nil
				return true
			}

			var match bool
			match, err = connor.Match(filter, rowData)
			if err != nil {
				err = fmt.Errorf("match: %w", err)
				return false
			}
			if !match {
				return true
			}
		}

		if skip > 0 {
			skip--
			return true
		}

		if !f(row) {
			return false
		}

		if limit > 0 {
			limit--
			if limit == 0 {
				return false
			}
		}

		return true
	})

	return err
}
