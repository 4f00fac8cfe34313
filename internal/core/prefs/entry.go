package prefs

// PrefEntry is one parsed preference statement. The parser fills Key, Value,
// and Type; Source and SourceFile are stamped later by whichever loader reads
// the file as part of a named tier. Entries are never mutated after they are
// inserted into a merge map.
type PrefEntry struct {
	Key         string     `json:"key"`
	Value       PrefValue  `json:"value"`
	Type        PrefType   `json:"type"`
	Explanation string     `json:"explanation,omitempty"`
	Source      PrefSource `json:"source,omitempty"`
	SourceFile  string     `json:"source_file,omitempty"`
}
