package api

import (
	"net/url"
	"strings"
	"time"

	"github.com/ifp/vicidial-cli/internal/resolve"
)

const (
	// DefaultProtocol is the scheme prefix used until SetProtocol is called.
	DefaultProtocol = "http://"
	// DefaultResource is the non-agent API script path.
	DefaultResource = "non_agent_api.php"
	// DefaultTimeout bounds one round trip unless overridden.
	DefaultTimeout = 15 * time.Second
	// UserAgent is sent with every request.
	UserAgent = "VicidialApiGateway"

	redactedPass = "***"
)

// reservedParams are emitted by the fixed URI prefix and cannot be added as
// free parameters.
var reservedParams = map[string]struct{}{
	"function": {},
	"user":     {},
	"pass":     {},
}

// Param is a single query parameter.
type Param struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// RequestBuilder accumulates the configuration of one non-agent API call and
// compiles it into a query URI. The compiled URI is cached until any input
// changes.
//
// A RequestBuilder is not safe for concurrent use.
type RequestBuilder struct {
	protocol string
	host     string
	resource string
	timeout  time.Duration
	action   Action
	user     string
	pass     string
	params   []Param
	index    map[string]int
	strict   bool

	dirty bool
	uri   string
}

// NewRequestBuilder returns a builder populated with the defaults.
func NewRequestBuilder() *RequestBuilder {
	return &RequestBuilder{
		protocol: DefaultProtocol,
		resource: DefaultResource,
		timeout:  DefaultTimeout,
		index:    make(map[string]int),
		dirty:    true,
	}
}

func (b *RequestBuilder) touch() {
	b.dirty = true
	b.uri = ""
}

// SetProtocol sets the scheme prefix, e.g. "https://". A bare scheme such as
// "https" is normalized.
func (b *RequestBuilder) SetProtocol(p string) *RequestBuilder {
	p = strings.TrimSpace(p)
	if p != "" && !strings.HasSuffix(p, "://") {
		p += "://"
	}
	b.protocol = p
	b.touch()
	return b
}

// SetHost sets the host name (optionally with a port or path prefix).
func (b *RequestBuilder) SetHost(h string) *RequestBuilder {
	b.host = strings.TrimSuffix(strings.TrimSpace(h), "/")
	b.touch()
	return b
}

// SetResource overrides the API script path.
func (b *RequestBuilder) SetResource(r string) *RequestBuilder {
	b.resource = strings.TrimPrefix(strings.TrimSpace(r), "/")
	b.touch()
	return b
}

// SetConnectionTimeout sets the transport timeout.
func (b *RequestBuilder) SetConnectionTimeout(d time.Duration) *RequestBuilder {
	b.timeout = d
	b.touch()
	return b
}

// SetUser sets the API user.
func (b *RequestBuilder) SetUser(u string) *RequestBuilder {
	b.user = u
	b.touch()
	return b
}

// SetPass sets the API password.
func (b *RequestBuilder) SetPass(p string) *RequestBuilder {
	b.pass = p
	b.touch()
	return b
}

// SetStrict toggles enforcement of the per-field format rules of the
// current action. Values already added are checked at compile time.
func (b *RequestBuilder) SetStrict(strict bool) *RequestBuilder {
	b.strict = strict
	b.touch()
	return b
}

// SetAction selects the remote function.
func (b *RequestBuilder) SetAction(a Action) error {
	if !a.Supported() {
		names := make([]string, 0, len(actionTable))
		for _, known := range SupportedActions() {
			names = append(names, known.String())
		}
		return &ConfigError{
			Err:         ErrUnsupportedAction,
			Name:        string(a),
			Suggestions: resolve.Suggest(string(a), names, 3),
		}
	}
	b.action = a
	b.touch()
	return nil
}

// Protocol returns the scheme prefix, e.g. "https://".
func (b *RequestBuilder) Protocol() string { return b.protocol }

// Host returns the host, including any port or path prefix.
func (b *RequestBuilder) Host() string { return b.host }

// Resource returns the API script path.
func (b *RequestBuilder) Resource() string { return b.resource }

// ConnectionTimeout returns the per-call transport timeout.
func (b *RequestBuilder) ConnectionTimeout() time.Duration { return b.timeout }

// Action returns the selected function, or "" when none is set.
func (b *RequestBuilder) Action() Action { return b.action }

// User returns the API user.
func (b *RequestBuilder) User() string { return b.user }

// Pass returns the API password in clear text.
func (b *RequestBuilder) Pass() string { return b.pass }

// Strict reports whether field format rules are enforced.
func (b *RequestBuilder) Strict() bool { return b.strict }

// checkParam validates a single parameter against the current set.
func (b *RequestBuilder) checkParam(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return &ConfigError{Err: ErrInvalidArgument, Reason: "parameter name cannot be empty"}
	}
	if _, ok := reservedParams[name]; ok {
		return &ConfigError{Err: ErrInvalidArgument, Name: name, Reason: "reserved parameter name"}
	}
	if _, ok := b.index[name]; ok {
		return configErr(ErrDuplicateParameter, name)
	}
	if b.strict {
		if err := b.checkFormat(name, value); err != nil {
			return err
		}
	}
	return nil
}

func (b *RequestBuilder) checkFormat(name, value string) error {
	f, ok := b.action.requiredField(name)
	if !ok {
		return nil
	}
	if err := f.Validate(value); err != nil {
		return &ConfigError{Err: ErrInvalidArgument, Name: name, Reason: err.Error()}
	}
	return nil
}

// AddParam appends a query parameter. Names are unique.
func (b *RequestBuilder) AddParam(name, value string) error {
	if err := b.checkParam(name, value); err != nil {
		return err
	}
	b.index[name] = len(b.params)
	b.params = append(b.params, Param{Name: name, Value: value})
	b.touch()
	return nil
}

// AddParams adds every param or none: all entries are validated, including
// against each other, before any is inserted.
func (b *RequestBuilder) AddParams(params ...Param) error {
	seen := make(map[string]struct{}, len(params))
	for _, p := range params {
		if err := b.checkParam(p.Name, p.Value); err != nil {
			return err
		}
		if _, dup := seen[p.Name]; dup {
			return configErr(ErrDuplicateParameter, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	for _, p := range params {
		b.index[p.Name] = len(b.params)
		b.params = append(b.params, p)
	}
	if len(params) > 0 {
		b.touch()
	}
	return nil
}

// HasParam reports whether name has been added.
func (b *RequestBuilder) HasParam(name string) bool {
	_, ok := b.index[name]
	return ok
}

// Param returns the value stored under name.
func (b *RequestBuilder) Param(name string) (string, bool) {
	i, ok := b.index[name]
	if !ok {
		return "", false
	}
	return b.params[i].Value, true
}

// Params returns a copy of the parameters in insertion order.
func (b *RequestBuilder) Params() []Param {
	out := make([]Param, len(b.params))
	copy(out, b.params)
	return out
}

// Validate checks that the configuration is complete without compiling.
func (b *RequestBuilder) Validate() error {
	switch {
	case b.host == "":
		return configErr(ErrMissingHost, "")
	case b.action == "":
		return configErr(ErrMissingAction, "")
	case b.user == "":
		return configErr(ErrMissingUser, "")
	case b.pass == "":
		return configErr(ErrMissingPass, "")
	}
	for _, f := range b.action.RequiredFields() {
		if !b.HasParam(f.Name) {
			return configErr(ErrMissingRequiredParameter, f.Name)
		}
	}
	if b.strict {
		for _, p := range b.params {
			if err := b.checkFormat(p.Name, p.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// CompileURI returns the full query URI. Repeated calls without an
// intervening mutation return the cached string.
func (b *RequestBuilder) CompileURI() (string, error) {
	if !b.dirty {
		return b.uri, nil
	}
	if err := b.Validate(); err != nil {
		return "", err
	}
	b.uri = b.compose(false)
	b.dirty = false
	return b.uri, nil
}

// RedactedURI compiles the URI with the password masked, for display.
func (b *RequestBuilder) RedactedURI() (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}
	return b.compose(true), nil
}

func (b *RequestBuilder) compose(redact bool) string {
	var sb strings.Builder
	sb.WriteString(b.protocol)
	sb.WriteString(b.host)
	sb.WriteByte('/')
	sb.WriteString(b.resource)
	sb.WriteString("?function=")
	sb.WriteString(url.QueryEscape(string(b.action)))
	sb.WriteString("&user=")
	sb.WriteString(url.QueryEscape(b.user))
	sb.WriteString("&pass=")
	if redact {
		sb.WriteString(redactedPass)
	} else {
		sb.WriteString(url.QueryEscape(b.pass))
	}
	for _, p := range b.params {
		sb.WriteByte('&')
		sb.WriteString(url.QueryEscape(p.Name))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.Value))
	}
	return sb.String()
}
