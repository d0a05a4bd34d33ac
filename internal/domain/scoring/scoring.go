// Package scoring turns an analysis result into the values the dashboard
// renders: the score fraction, the certificate callout and the overview rows.
package scoring

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/techmentor/internal/domain/analysis"
)

// Default presentation constants.
const (
	maxScore           = 10
	defaultPlaceholder = "—"
	unknownCertificate = "Unknown"
)

// defaultHighlightMarkers select the callout rendering for certificates.
// Matching is case-sensitive.
var defaultHighlightMarkers = []string{"Yes", "Likely"}

// Option applies a configuration option to the Presenter.
type Option func(*Presenter)

// WithPlaceholder sets the text shown for absent overview values.
func WithPlaceholder(p string) Option {
	return func(s *Presenter) {
		s.placeholder = p
	}
}

// WithHighlightMarkers replaces the substrings that highlight a certificate.
func WithHighlightMarkers(markers ...string) Option {
	return func(s *Presenter) {
		if len(markers) > 0 {
			s.markers = append([]string(nil), markers...)
		}
	}
}

// Row is one line of the event overview table.
type Row struct {
	Field string
	Value string
}

// Certificate carries the certificate status and its rendering branch.
type Certificate struct {
	Status      string
	Highlighted bool
}

// Card is everything the analysis tab displays for one result.
type Card struct {
	ScoreLabel  string
	Fraction    float64
	Percent     int
	Certificate Certificate
	Overview    []Row
	Skills      []string
	Explanation string
	MissingInfo []string
	EventName   string
}

// Presenter builds cards from results.
type Presenter struct {
	placeholder string
	markers     []string
}

// NewPresenter creates a Presenter with configuration options.
func NewPresenter(opts ...Option) *Presenter {
	p := &Presenter{
		placeholder: defaultPlaceholder,
		markers:     defaultHighlightMarkers,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Card builds the dashboard values for r.
func (p *Presenter) Card(r analysis.Result) Card {
	fraction := Fraction(r)
	cert := r.String(analysis.KeyCertificate)
	if cert == "" {
		cert = unknownCertificate
	}
	return Card{
		ScoreLabel: ScoreLabel(r),
		Fraction:   fraction,
		Percent:    int(math.Round(fraction * 100)),
		Certificate: Certificate{
			Status:      cert,
			Highlighted: p.highlighted(cert),
		},
		Overview: []Row{
			{Field: "Event Name", Value: p.orPlaceholder(r.String(analysis.KeyEventName))},
			{Field: "Date", Value: p.orPlaceholder(r.String(analysis.KeyDate))},
			{Field: "Sector", Value: p.orPlaceholder(r.String(analysis.KeySector))},
			{Field: "Certificate", Value: p.orPlaceholder(r.String(analysis.KeyCertificate))},
			{Field: "Verdict", Value: p.orPlaceholder(r.String(analysis.KeyVerdict))},
		},
		Skills:      r.Strings(analysis.KeySkills),
		Explanation: r.String(analysis.KeyExplanation),
		MissingInfo: r.Strings(analysis.KeyMissingInfo),
		EventName:   r.EventName(),
	}
}

func (p *Presenter) highlighted(status string) bool {
	for _, m := range p.markers {
		if strings.Contains(status, m) {
			return true
		}
	}
	return false
}

func (p *Presenter) orPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return p.placeholder
	}
	return v
}

// Fraction returns score/10 clamped to [0,1]. Absent or non-numeric
// scores give 0.
func Fraction(r analysis.Result) float64 {
	score, ok := r.Score()
	if !ok {
		return 0
	}
	return math.Max(0, math.Min(1, score/maxScore))
}

// ScoreLabel renders "<score>/10". The raw score is shown unclamped; an
// absent score renders as 0.
func ScoreLabel(r analysis.Result) string {
	score, ok := r.Score()
	if !ok {
		score = 0
	}
	return strconv.FormatFloat(score, 'f', -1, 64) + "/" + strconv.Itoa(maxScore)
}

// CertificateHighlighted reports whether status selects the callout branch
// under the default markers.
func CertificateHighlighted(status string) bool {
	return NewPresenter().highlighted(status)
}
