package bitbucket

import (
	"strings"
	"unicode"

	jsoniter "github.com/json-iterator/go"
)

// APIVersion selects the Bitbucket REST API generation
type APIVersion int

const (
	// V1 is the legacy 1.0 API
	V1 APIVersion = 1
	// V2 is the 2.0 API
	V2 APIVersion = 2
)

// String returns the version path segment
func (v APIVersion) String() string {
	if v == V1 {
		return "1.0"
	}
	return "2.0"
}

// Wire names that the lowercase_underscore rule gets wrong
var (
	v1FieldNames = map[string]string{
		"ResourceURI":    "resource_uri",
		"UTCCreatedOn":   "utc_created_on",
		"UTCLastUpdated": "utc_last_updated",
		"SCM":            "scm",
		"ForkOf":         "fork_of",
	}
	v2FieldNames = map[string]string{
		"MainBranch": "mainbranch",
		"PageLen":    "pagelen",
		"SCM":        "scm",
		"HTML":       "html",
	}
)

// Codec encodes and decodes wire JSON for one API version. Exported struct
// fields without an explicit json name are translated to the remote
// lowercase_underscore names in both directions.
type Codec struct {
	version APIVersion
	names   map[string]string
	api     jsoniter.API
}

// NewCodec builds the codec for an API version
func NewCodec(version APIVersion) *Codec {
	names := v2FieldNames
	cfg := jsoniter.Config{
		EscapeHTML:             false,
		ValidateJsonRawMessage: true,
		CaseSensitive:          true,
	}
	if version == V1 {
		names = v1FieldNames
		// distinct config so the two versions never share cached decoders
		cfg.CaseSensitive = false
	}

	c := &Codec{version: version, names: names}
	c.api = cfg.Froze()
	c.api.RegisterExtension(&namingExtension{translate: c.WireName})
	return c
}

// Version returns the API version this codec serves
func (c *Codec) Version() APIVersion {
	return c.version
}

// Marshal encodes v using wire field names
func (c *Codec) Marshal(v any) ([]byte, error) {
	return c.api.Marshal(v)
}

// Unmarshal decodes wire JSON into v
func (c *Codec) Unmarshal(data []byte, v any) error {
	return c.api.Unmarshal(data, v)
}

// WireName translates a Go field name to its remote name
func (c *Codec) WireName(field string) string {
	if name, ok := c.names[field]; ok {
		return name
	}
	return snakeCase(field)
}

// snakeCase converts FullName to full_name and keeps initialisms together:
// AccountID -> account_id, UUID -> uuid, UTCCreatedOn -> utc_created_on.
func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

type namingExtension struct {
	jsoniter.DummyExtension
	translate func(string) string
}

func (e *namingExtension) UpdateStructDescriptor(desc *jsoniter.StructDescriptor) {
	for _, binding := range desc.Fields {
		name := binding.Field.Name()
		if name == "" || !unicode.IsUpper(rune(name[0])) {
			continue
		}
		if tag, ok := binding.Field.Tag().Lookup("json"); ok {
			if explicit := strings.Split(tag, ",")[0]; explicit != "" {
				continue
			}
		}
		wire := e.translate(name)
		binding.ToNames = []string{wire}
		binding.FromNames = []string{wire}
	}
}
