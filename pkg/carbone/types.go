package carbone

const (
	kindTemplateID    = "template_id"
	kindRenderID      = "render_id"
	kindTemplateName  = "template_name"
	kindRenderOptions = "render_options"
)

// identifier is the non-empty string shared by TemplateID and RenderID.
type identifier struct {
	value string
}

func newIdentifier(raw, kind string) (identifier, error) {
	if raw == "" {
		return identifier{}, &EmptyValueError{Kind: kind}
	}
	return identifier{value: raw}, nil
}

// TemplateID names a template stored by the Service. Locally derived ids are
// 64 character lowercase hex SHA-256 digests.
type TemplateID struct {
	identifier
}

// NewTemplateID wraps raw as a TemplateID. raw is kept exactly as given.
func NewTemplateID(raw string) (TemplateID, error) {
	id, err := newIdentifier(raw, kindTemplateID)
	if err != nil {
		return TemplateID{}, err
	}
	return TemplateID{id}, nil
}

func (id TemplateID) String() string { return id.value }

// IsZero reports whether id was never constructed.
func (id TemplateID) IsZero() bool { return id.value == "" }

// RenderID names a render job. Its format is owned by the Service
// (e.g. "MTAuMjAuMjEuMTAgICAg01E98H4R7PMC2H6XSE5Z6J8XYQ.pdf").
type RenderID struct {
	identifier
}

// NewRenderID wraps raw as a RenderID.
func NewRenderID(raw string) (RenderID, error) {
	id, err := newIdentifier(raw, kindRenderID)
	if err != nil {
		return RenderID{}, err
	}
	return RenderID{id}, nil
}

func (id RenderID) String() string { return id.value }

func (id RenderID) IsZero() bool { return id.value == "" }

// RenderOptions is the JSON document sent to POST /render/{templateId}. It is
// passed through to the Service without being parsed.
type RenderOptions struct {
	raw string
}

// NewRenderOptions fails when raw is empty.
func NewRenderOptions(raw string) (RenderOptions, error) {
	if raw == "" {
		return RenderOptions{}, &EmptyValueError{Kind: kindRenderOptions}
	}
	return RenderOptions{raw: raw}, nil
}

func (o RenderOptions) String() string { return o.raw }
