package notify

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/scanreport/internal/format"
)

// Authentication modes accepted by the authentication option. AuthNone
// sends no credentials.
const (
	AuthPlain   = "plain"
	AuthLogin   = "login"
	AuthCRAMMD5 = "cram_md5"
	AuthNone    = ""
)

// Domain is announced in EHLO and used for Message-ID.
const Domain = "localhost.localdomain"

// OptionSpec describes one notification option for help output and config
// templates.
type OptionSpec struct {
	Name        string
	Description string
	Required    bool
	Default     string
	Choices     []string
}

// OptionSpecs returns the notification options in declaration order.
func OptionSpecs() []OptionSpec {
	return []OptionSpec{
		{Name: "to", Description: "E-mail address of the receiver.", Required: true},
		{Name: "cc", Description: "E-mail address to which to send a carbon copy of the notification."},
		{Name: "bcc", Description: "E-mail address for a blind carbon copy."},
		{Name: "from", Description: "E-mail address of the sender.", Required: true},
		{Name: "server_address", Description: "Address of the SMTP server to use.", Required: true},
		{Name: "server_port", Description: "SMTP port.", Required: true},
		{Name: "tls", Description: "Use STARTTLS.", Default: "false"},
		{Name: "username", Description: "SMTP username. Required unless authentication is empty."},
		{Name: "password", Description: "SMTP password. Required unless authentication is empty."},
		{
			Name:        "authentication",
			Description: "Authentication.",
			Default:     AuthPlain,
			Choices:     []string{AuthPlain, AuthLogin, AuthCRAMMD5, AuthNone},
		},
		{
			Name:        "report",
			Description: "Report type to send as an attachment.",
			Default:     format.Text.String(),
			Choices: []string{
				format.HTML.String(), format.Text.String(), format.Markdown.String(),
				format.JSON.String(), format.YAML.String(), format.None.String(),
			},
		},
	}
}

// Addresses is a list of e-mail addresses. In YAML it may be written as a
// single address, a comma-separated string or a sequence.
type Addresses []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Addresses) UnmarshalYAML(node *yaml.Node) error {
	var raw []string
	switch node.Kind {
	case yaml.ScalarNode:
		raw = []string{node.Value}
	case yaml.SequenceNode:
		if err := node.Decode(&raw); err != nil {
			return err
		}
	default:
		return fmt.Errorf("line %d: addresses must be a string or a list", node.Line)
	}
	*a = ParseAddresses(strings.Join(raw, ","))
	return nil
}

// ParseAddresses splits a comma-separated list and drops empty entries.
func ParseAddresses(s string) Addresses {
	var out Addresses
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// String joins the addresses for a message header.
func (a Addresses) String() string {
	return strings.Join(a, ", ")
}

// Options configures a notification.
type Options struct {
	To             Addresses `yaml:"to" validate:"required,min=1,dive,email"`
	Cc             Addresses `yaml:"cc,omitempty" validate:"omitempty,dive,email"`
	Bcc            Addresses `yaml:"bcc,omitempty" validate:"omitempty,dive,email"`
	From           string    `yaml:"from" validate:"required,email"`
	ServerAddress  string    `yaml:"server_address" validate:"required,hostname_rfc1123|ip"`
	ServerPort     int       `yaml:"server_port" validate:"required,min=1,max=65535"`
	TLS            bool      `yaml:"tls"`
	Username       string    `yaml:"username" validate:"required_with=Authentication"`
	Password       string    `yaml:"password" validate:"required_with=Authentication"`
	Authentication string    `yaml:"authentication" validate:"omitempty,oneof=plain login cram_md5"`
	Report         string    `yaml:"report" validate:"report_format"`
}

// DefaultOptions returns Options holding every declared default.
func DefaultOptions() Options {
	return Options{
		Authentication: AuthPlain,
		Report:         format.Text.String(),
	}
}

// ReportFormat returns the attachment format. Validate guarantees it parses.
func (o Options) ReportFormat() format.Format {
	f, err := format.Parse(o.Report)
	if err != nil {
		return format.None
	}
	return f
}

// ServerAddr returns the "host:port" to dial.
func (o Options) ServerAddr() string {
	host := o.ServerAddress
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return host + ":" + strconv.Itoa(o.ServerPort)
}

// Set assigns one option from its textual form, as given on the command
// line ("name=value").
func (o *Options) Set(name, value string) error {
	switch name {
	case "to":
		o.To = ParseAddresses(value)
	case "cc":
		o.Cc = ParseAddresses(value)
	case "bcc":
		o.Bcc = ParseAddresses(value)
	case "from":
		o.From = value
	case "server_address":
		o.ServerAddress = value
	case "server_port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: server_port: %q is not a number", ErrInvalidOptions, value)
		}
		o.ServerPort = port
	case "tls":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: tls: %q is not a boolean", ErrInvalidOptions, value)
		}
		o.TLS = b
	case "username":
		o.Username = value
	case "password":
		o.Password = value
	case "authentication":
		o.Authentication = strings.ToLower(value)
	case "report":
		o.Report = value
	default:
		return fmt.Errorf("%w: unknown option %q", ErrInvalidOptions, name)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("report_format", func(fl validator.FieldLevel) bool {
		_, err := format.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks o and reports every problem at once.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, formatFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(messages, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_with":
		return field + " is required when authentication is set"
	case "min":
		if fe.Kind() == reflect.Slice {
			return field + " needs at least " + fe.Param() + " address"
		}
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "email":
		return fmt.Sprintf("%s: %q is not an e-mail address", field, fe.Value())
	case "hostname_rfc1123|ip":
		return fmt.Sprintf("%s: %q is not a host name or IP address", field, fe.Value())
	case "oneof":
		return field + " must be one of: " + fe.Param() + " or empty"
	case "report_format":
		return fmt.Sprintf("%s: unknown report format %q", field, fe.Value())
	default:
		return field + " failed validation: " + fe.Tag()
	}
}
