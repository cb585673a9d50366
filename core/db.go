package core

// DBOrdering is one sort key of a list query, parsed at the API boundary
// and interpreted by the repositories. Field names a repository does not
// recognize are ignored.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
