package site

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/scan"
)

type Writer struct {
	tx bob.Tx
	Reader
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

// Insert creates a new site and returns the stored row.
func (w *Writer) Insert(ctx context.Context, create *SiteCreate) (*Site, error) {
	status := create.Status
	if status == "" {
		status = StatusActive
	}
	query := psql.Insert(
		im.Into(tableName, "name", "location", "manager_id", "status"),
		im.Values(psql.Arg(create.Name, create.Location, create.ManagerID, string(status))),
		im.Returning(Columns...),
	)
	inserted, err := bob.One(ctx, w.tx, query, scan.StructMapper[row]())
	if err != nil {
		return nil, err
	}
	return rowToSite(inserted), nil
}
