package apitablev1

import (
	"github.com/fulldump/box"

	"github.com/fulldump/slotlist/service"
)

func BuildV1Table(v1 *box.R, s service.Servicer) *box.R {

	tables := v1.Resource("/tables").
		WithActions(
			box.Get(listTables),
			box.Post(createTable),
		)

	v1.Resource("/tables/{tableName}").
		WithActions(
			box.Get(getTable),
			box.ActionPost(insert),
			box.ActionPost(find),
			box.ActionPost(compact),
			box.ActionPost(dropTable),
			box.ActionPost(listIndexes),
			box.ActionPost(createIndex),
			box.ActionPost(dropIndex),
		)

	v1.Resource("/tables/{tableName}/handles/{handle}").
		WithActions(
			box.Get(getHandle),
			box.Put(replaceHandle),
			box.Delete(removeHandle),
		)

	return tables
}
