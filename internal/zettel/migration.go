package zettel

// typeRenames maps legacy type values to their current equivalents.
var typeRenames = map[string]string{
	"loop":         "project",
	"wiki-article": "note",
	"zettel":       "note",
}

// MigrateBase applies the type-independent migration rules: rename the
// legacy `zkn-id` key to `id`, merge a singular `tag` key into the `tags`
// list, and rewrite legacy type values to their current names. Keys are
// assumed already kebab-cased by NormalizeKeys.
func MigrateBase(note *Note) {
	migrateZknID(note)
	migrateTagIntoTags(note)
	migrateTypeRename(note)
}

func migrateZknID(note *Note) {
	if !note.Metadata.Has("zkn-id") {
		return
	}
	if note.Metadata.IsMissing("id") {
		if v, ok := note.Metadata.Get("zkn-id"); ok {
			note.Metadata.Set("id", v)
		}
	}
	note.Metadata.Delete("zkn-id")
}

func migrateTagIntoTags(note *Note) {
	if !note.Metadata.Has("tag") {
		return
	}
	tagVal, _ := note.Metadata.Get("tag")

	var merged []Value
	if existing, ok := note.Metadata.Get("tags"); ok {
		if list, isList := existing.AsList(); isList {
			merged = append(merged, list...)
		} else if !existing.IsNull() {
			merged = append(merged, existing)
		}
	}
	if list, isList := tagVal.AsList(); isList {
		merged = append(merged, list...)
	} else if !tagVal.IsNull() {
		merged = append(merged, tagVal)
	}

	note.Metadata.Set("tags", List(merged))
	note.Metadata.Delete("tag")
}

func migrateTypeRename(note *Note) {
	t := note.TypeString()
	if t == "" {
		return
	}
	if renamed, ok := typeRenames[t]; ok {
		note.Metadata.Set("type", String(renamed))
	}
}
