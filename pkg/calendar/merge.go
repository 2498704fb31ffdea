package calendar

// Merge folds a freshly fetched calendar set into the locally persisted one and returns a new set.
//
// For ids known locally the downloaded fields (Name, Description, TimeZone) are taken from
// fetched while Active keeps its local value. Unknown ids are added exactly as fetched.
// Local calendars missing from fetched are carried over untouched. Neither input is modified.
func Merge(local, fetched Calendars) Calendars {
	merged := make(Calendars, len(local)+len(fetched))
	for id, c := range local {
		merged[id] = c
	}
	for id, f := range fetched {
		c, ok := local[id]
		if !ok {
			merged[id] = f
			continue
		}
		merged[id] = Calendar{
			ID:          c.ID,
			Name:        f.Name,
			Description: f.Description,
			TimeZone:    f.TimeZone,
			Active:      c.Active,
		}
	}
	return merged
}
