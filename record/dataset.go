package record

import (
	"fmt"
	"sort"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// StateDraft marks a dataset whose import has not been completed by a curator.
const StateDraft = "draft"

// Dataset is the normalized record handed to the catalogue.
type Dataset struct {
	ID                      string
	Name                    string
	Title                   string
	Notes                   string
	URL                     string
	LicenseID               string
	State                   string
	Keywords                []string
	DataCollector           string
	DataCollectionTechnique string
	OriginalID              string
	ShortTitle              string
	UnitOfMeasurement       string
	OwnerOrg                string
	Private                 *bool
	Visibility              string
	ExternalAccessLevel     string
	Archived                string
	DDI                     bool
	Resources               []Resource

	// Set by the catalogue.
	CreatorUser string
	Created     time.Time
	Modified    time.Time

	// Extra holds fields without a dedicated slot.
	Extra *structpb.Struct
}

// Resource describes a file or link attached to a dataset.
type Resource struct {
	ID         string
	URL        string
	Name       string
	Format     string
	Type       string
	FileType   string
	Visibility string
	Size       int64
}

// SetExtra sets an extra field value on the dataset.
func (d *Dataset) SetExtra(key string, value any) {
	if d.Extra == nil {
		d.Extra = &structpb.Struct{
			Fields: make(map[string]*structpb.Value),
		}
	}
	v, err := structpb.NewValue(plain(value))
	if err != nil {
		v = structpb.NewStringValue(fmt.Sprint(value))
	}
	d.Extra.Fields[key] = v
}

// GetExtra retrieves an extra field value.
func (d *Dataset) GetExtra(key string) (any, bool) {
	if d.Extra == nil || d.Extra.Fields == nil {
		return nil, false
	}
	v, ok := d.Extra.Fields[key]
	if !ok {
		return nil, false
	}
	return v.AsInterface(), true
}

// GetExtraString retrieves an extra field as a string.
func (d *Dataset) GetExtraString(key string) string {
	v, ok := d.GetExtra(key)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// ExtraKeys returns the extra field names in sorted order.
func (d *Dataset) ExtraKeys() []string {
	if d.Extra == nil {
		return nil
	}
	keys := make([]string, 0, len(d.Extra.Fields))
	for k := range d.Extra.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToMap flattens the dataset into the catalogue's field dictionary. Empty
// fields are omitted so that merging only carries values that were set.
func (d *Dataset) ToMap() map[string]any {
	m := make(map[string]any)
	if d.Extra != nil {
		for k, v := range d.Extra.Fields {
			m[k] = v.AsInterface()
		}
	}
	setString(m, "id", d.ID)
	setString(m, "name", d.Name)
	setString(m, "title", d.Title)
	setString(m, "notes", d.Notes)
	setString(m, "url", d.URL)
	setString(m, "license_id", d.LicenseID)
	setString(m, "state", d.State)
	setString(m, "data_collector", d.DataCollector)
	setString(m, "data_collection_technique", d.DataCollectionTechnique)
	setString(m, "original_id", d.OriginalID)
	setString(m, "short_title", d.ShortTitle)
	setString(m, "unit_of_measurement", d.UnitOfMeasurement)
	setString(m, "owner_org", d.OwnerOrg)
	setString(m, "visibility", d.Visibility)
	setString(m, "external_access_level", d.ExternalAccessLevel)
	setString(m, "archived", d.Archived)
	setString(m, "creator_user_id", d.CreatorUser)
	if len(d.Keywords) > 0 {
		kw := make([]any, len(d.Keywords))
		for i, k := range d.Keywords {
			kw[i] = k
		}
		m["keywords"] = kw
	}
	if d.Private != nil {
		m["private"] = *d.Private
	}
	if d.DDI {
		m["ddi"] = true
	}
	if !d.Created.IsZero() {
		m["metadata_created"] = d.Created.UTC().Format(time.RFC3339Nano)
	}
	if !d.Modified.IsZero() {
		m["metadata_modified"] = d.Modified.UTC().Format(time.RFC3339Nano)
	}
	if len(d.Resources) > 0 {
		res := make([]any, len(d.Resources))
		for i, r := range d.Resources {
			res[i] = r.ToMap()
		}
		m["resources"] = res
	}
	return m
}

// DatasetFromMap builds a dataset from a field dictionary. Keys without a
// dedicated field end up in Extra.
func DatasetFromMap(m map[string]any) *Dataset {
	d := &Dataset{}
	for k, v := range m {
		switch k {
		case "id":
			d.ID = stringFrom(v)
		case "name":
			d.Name = stringFrom(v)
		case "title":
			d.Title = stringFrom(v)
		case "notes":
			d.Notes = stringFrom(v)
		case "url":
			d.URL = stringFrom(v)
		case "license_id":
			d.LicenseID = stringFrom(v)
		case "state":
			d.State = stringFrom(v)
		case "data_collector":
			d.DataCollector = stringFrom(v)
		case "data_collection_technique":
			d.DataCollectionTechnique = stringFrom(v)
		case "original_id":
			d.OriginalID = stringFrom(v)
		case "short_title":
			d.ShortTitle = stringFrom(v)
		case "unit_of_measurement":
			d.UnitOfMeasurement = stringFrom(v)
		case "owner_org":
			d.OwnerOrg = stringFrom(v)
		case "visibility":
			d.Visibility = stringFrom(v)
		case "external_access_level":
			d.ExternalAccessLevel = stringFrom(v)
		case "archived":
			d.Archived = stringFrom(v)
		case "creator_user_id":
			d.CreatorUser = stringFrom(v)
		case "keywords":
			d.Keywords = stringsFrom(v)
		case "private":
			if b, ok := v.(bool); ok {
				d.Private = &b
			}
		case "ddi":
			d.DDI, _ = v.(bool)
		case "metadata_created":
			d.Created = timeFrom(v)
		case "metadata_modified":
			d.Modified = timeFrom(v)
		case "resources":
			d.Resources = resourcesFrom(v)
		default:
			d.SetExtra(k, v)
		}
	}
	return d
}

// Merge returns a copy of d with every field set on incoming laid over it.
// The identity of d (id and name) is never replaced.
func (d *Dataset) Merge(incoming *Dataset) *Dataset {
	m := d.ToMap()
	for k, v := range incoming.ToMap() {
		if k == "id" || k == "name" {
			continue
		}
		m[k] = v
	}
	return DatasetFromMap(m)
}

// Clone returns a deep copy of the dataset.
func (d *Dataset) Clone() *Dataset {
	return DatasetFromMap(d.ToMap())
}

// ToMap flattens the resource into a field dictionary.
func (r Resource) ToMap() map[string]any {
	m := make(map[string]any)
	setString(m, "id", r.ID)
	m["url"] = r.URL
	setString(m, "name", r.Name)
	setString(m, "format", r.Format)
	setString(m, "type", r.Type)
	setString(m, "file_type", r.FileType)
	setString(m, "visibility", r.Visibility)
	if r.Size > 0 {
		m["size"] = r.Size
	}
	return m
}

// ResourceFromMap builds a resource from a field dictionary.
func ResourceFromMap(m map[string]any) Resource {
	r := Resource{
		ID:         stringFrom(m["id"]),
		URL:        stringFrom(m["url"]),
		Name:       stringFrom(m["name"]),
		Format:     stringFrom(m["format"]),
		Type:       stringFrom(m["type"]),
		FileType:   stringFrom(m["file_type"]),
		Visibility: stringFrom(m["visibility"]),
	}
	switch size := m["size"].(type) {
	case int64:
		r.Size = size
	case int:
		r.Size = int64(size)
	case float64:
		r.Size = int64(size)
	}
	return r
}

func setString(m map[string]any, key, value string) {
	if value != "" {
		m[key] = value
	}
}

func stringsFrom(v any) []string {
	switch val := v.(type) {
	case []string:
		return append([]string(nil), val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	}
	return nil
}

func timeFrom(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		t, err := time.Parse(time.RFC3339Nano, val)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

func resourcesFrom(v any) []Resource {
	switch val := v.(type) {
	case []Resource:
		return append([]Resource(nil), val...)
	case []any:
		out := make([]Resource, 0, len(val))
		for _, item := range val {
			switch r := item.(type) {
			case map[string]any:
				out = append(out, ResourceFromMap(r))
			case Resource:
				out = append(out, r)
			}
		}
		return out
	}
	return nil
}

// plain converts values structpb cannot represent into plain Go values.
func plain(value any) any {
	switch v := value.(type) {
	case []Entry:
		out := make([]any, len(v))
		for i, e := range v {
			m := map[string]any{"value": e.Value}
			if e.Abbr != "" {
				m["abbr"] = e.Abbr
			}
			if e.Label != "" {
				m["label"] = e.Label
			}
			out[i] = m
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	}
	return value
}
