package archive

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// UnknownSaleID is stored when no sale reference could be extracted.
	UnknownSaleID = "UNKNOWN"
	// UnknownCreator is stored when the archiving user has no name.
	UnknownCreator = "UNKNOWN"
	// UnknownProperty is the property name used when no short opening message exists.
	UnknownProperty = "Unknown"
)

// TicketMetadata is the single durable record describing an archived ticket channel.
type TicketMetadata struct {
	id             uint
	channelID      string
	channelName    string
	title          string
	createdBy      string
	summary        string
	tags           []string
	saleID         string
	staff          []string
	quotedRevenue  *float64
	propertyName   string
	createdAt      time.Time
	updatedAt      time.Time
	lastArchivedAt *time.Time
}

// ArchiveDetails carries everything an archive run derives for a channel.
type ArchiveDetails struct {
	ChannelName   string
	Title         string
	CreatedBy     string
	Summary       string
	Tags          []string
	SaleID        string
	Staff         []string
	QuotedRevenue *float64
	PropertyName  string
}

func (d ArchiveDetails) normalized() (ArchiveDetails, error) {
	if d.QuotedRevenue != nil && (math.IsNaN(*d.QuotedRevenue) || math.IsInf(*d.QuotedRevenue, 0)) {
		return d, fmt.Errorf("quoted revenue must be a finite number")
	}
	if strings.TrimSpace(d.Title) == "" {
		return d, fmt.Errorf("title is required")
	}
	if strings.TrimSpace(d.CreatedBy) == "" {
		d.CreatedBy = UnknownCreator
	}
	if strings.TrimSpace(d.SaleID) == "" {
		d.SaleID = UnknownSaleID
	}
	d.Tags = nonNil(d.Tags)
	d.Staff = nonNil(d.Staff)
	return d, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func NewTicketMetadata(channelID string, details ArchiveDetails) (*TicketMetadata, error) {
	if strings.TrimSpace(channelID) == "" {
		return nil, fmt.Errorf("channel ID is required")
	}
	d, err := details.normalized()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m := &TicketMetadata{
		channelID: channelID,
		createdAt: now,
		updatedAt: now,
	}
	m.apply(d)
	return m, nil
}

func ReconstructTicketMetadata(
	id uint,
	channelID string,
	details ArchiveDetails,
	createdAt, updatedAt time.Time,
	lastArchivedAt *time.Time,
) (*TicketMetadata, error) {
	if id == 0 {
		return nil, fmt.Errorf("ticket metadata ID cannot be zero")
	}
	if channelID == "" {
		return nil, fmt.Errorf("channel ID is required")
	}
	d, err := details.normalized()
	if err != nil {
		return nil, err
	}

	m := &TicketMetadata{
		id:             id,
		channelID:      channelID,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
		lastArchivedAt: lastArchivedAt,
	}
	m.apply(d)
	return m, nil
}

func (m *TicketMetadata) apply(d ArchiveDetails) {
	m.channelName = d.ChannelName
	m.title = d.Title
	m.createdBy = d.CreatedBy
	m.summary = d.Summary
	m.tags = d.Tags
	m.saleID = d.SaleID
	m.staff = d.Staff
	m.quotedRevenue = d.QuotedRevenue
	m.propertyName = d.PropertyName
}

// ApplyArchive merges a re-archive into the row. ID, channel, creator and
// creation time never change. A value the run could not derive (blank summary,
// UNKNOWN sale, nil quote, Unknown property) keeps what is stored; staff and
// tags accumulate.
func (m *TicketMetadata) ApplyArchive(details ArchiveDetails) error {
	d, err := details.normalized()
	if err != nil {
		return err
	}

	m.channelName = d.ChannelName
	m.title = d.Title
	if strings.TrimSpace(d.Summary) != "" {
		m.summary = d.Summary
	}
	if d.SaleID != UnknownSaleID {
		m.saleID = d.SaleID
	}
	if d.QuotedRevenue != nil {
		m.quotedRevenue = d.QuotedRevenue
	}
	if d.PropertyName != "" && d.PropertyName != UnknownProperty {
		m.propertyName = d.PropertyName
	}
	m.staff = union(m.staff, d.Staff)
	m.tags = union(m.tags, d.Tags)
	m.updatedAt = time.Now().UTC()
	return nil
}

// union appends the items of b missing from a, compared case-insensitively.
func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, item := range list {
			key := strings.ToLower(strings.TrimSpace(item))
			if key == "" {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// Retag replaces the tag list without touching the other derived fields.
func (m *TicketMetadata) Retag(tags []string) {
	m.tags = nonNil(tags)
	m.updatedAt = time.Now().UTC()
}

// MarkArchived advances the incremental low-water mark. It never moves backwards.
func (m *TicketMetadata) MarkArchived(through time.Time) {
	if m.lastArchivedAt != nil && !through.After(*m.lastArchivedAt) {
		return
	}
	t := through.UTC()
	m.lastArchivedAt = &t
	m.updatedAt = time.Now().UTC()
}

func (m *TicketMetadata) SetID(id uint) error {
	if m.id != 0 {
		return fmt.Errorf("ticket metadata ID already set")
	}
	if id == 0 {
		return fmt.Errorf("ticket metadata ID cannot be zero")
	}
	m.id = id
	return nil
}

func (m *TicketMetadata) ID() uint {
	return m.id
}

func (m *TicketMetadata) ChannelID() string {
	return m.channelID
}

func (m *TicketMetadata) ChannelName() string {
	return m.channelName
}

func (m *TicketMetadata) Title() string {
	return m.title
}

func (m *TicketMetadata) CreatedBy() string {
	return m.createdBy
}

func (m *TicketMetadata) Summary() string {
	return m.summary
}

func (m *TicketMetadata) Tags() []string {
	out := make([]string, len(m.tags))
	copy(out, m.tags)
	return out
}

func (m *TicketMetadata) SaleID() string {
	return m.saleID
}

func (m *TicketMetadata) Staff() []string {
	out := make([]string, len(m.staff))
	copy(out, m.staff)
	return out
}

func (m *TicketMetadata) QuotedRevenue() *float64 {
	if m.quotedRevenue == nil {
		return nil
	}
	v := *m.quotedRevenue
	return &v
}

func (m *TicketMetadata) PropertyName() string {
	return m.propertyName
}

func (m *TicketMetadata) CreatedAt() time.Time {
	return m.createdAt
}

func (m *TicketMetadata) UpdatedAt() time.Time {
	return m.updatedAt
}

func (m *TicketMetadata) LastArchivedAt() *time.Time {
	return m.lastArchivedAt
}

// DisplayTitle is the label shown in search results and restore threads.
func (m *TicketMetadata) DisplayTitle() string {
	switch {
	case m.propertyName != "" && m.propertyName != UnknownProperty:
		return m.propertyName
	case m.title != "":
		return m.title
	default:
		return m.channelID
	}
}

// Document is the text indexed for semantic search.
func (m *TicketMetadata) Document() string {
	parts := []string{m.propertyName, m.summary}
	if len(m.tags) > 0 {
		parts = append(parts, strings.Join(m.tags, " "))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// ThreadTitle names the restore thread and its header.
func (m *TicketMetadata) ThreadTitle() string {
	switch {
	case m.title != "":
		return m.title
	case m.propertyName != "":
		return m.propertyName
	default:
		return "ticket"
	}
}
