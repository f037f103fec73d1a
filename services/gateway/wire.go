package gateway

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"estatepro/models"
)

// wireTimeLayout matches the millisecond UTC timestamps the mobile client
// has always sent.
const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	models.DateLayout,
}

func formatTime(t time.Time) string {
	return t.UTC().Format(wireTimeLayout)
}

// parseTime accepts the handful of timestamp spellings the backend emits.
// Zone-less values are read as UTC.
func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func parseOptionalTime(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseTime(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

type wireWindow struct {
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type wireSlot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func encodeWindows(ws []models.TimeWindow) []wireWindow {
	out := make([]wireWindow, len(ws))
	for i, w := range ws {
		day, err := time.ParseInLocation(models.DateLayout, w.Date, w.Start.Location())
		if err != nil {
			day = time.Date(w.Start.Year(), w.Start.Month(), w.Start.Day(), 0, 0, 0, 0, w.Start.Location())
		}
		out[i] = wireWindow{
			Date:      formatTime(day),
			StartTime: formatTime(w.Start),
			EndTime:   formatTime(w.End),
		}
	}
	return out
}

// decodeWindows derives Date from the start instant rather than trusting the
// wire date, which is a midnight timestamp that may sit in another zone.
func decodeWindows(ws []wireWindow) ([]models.TimeWindow, error) {
	out := make([]models.TimeWindow, len(ws))
	for i, w := range ws {
		start, err := parseTime(w.StartTime)
		if err != nil {
			return nil, fmt.Errorf("availability_slots[%d].startTime: %w", i, err)
		}
		end, err := parseTime(w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("availability_slots[%d].endTime: %w", i, err)
		}
		window, err := models.NewTimeWindow(start, end)
		if err != nil {
			return nil, fmt.Errorf("availability_slots[%d]: %w", i, err)
		}
		out[i] = window
	}
	return out, nil
}

func encodeSlot(s *models.Slot) *wireSlot {
	if s == nil {
		return nil
	}
	return &wireSlot{StartTime: formatTime(s.Start), EndTime: formatTime(s.End)}
}

func decodeSlot(s *wireSlot) (*models.Slot, error) {
	if s == nil || (s.StartTime == "" && s.EndTime == "") {
		return nil, nil
	}
	start, err := parseTime(s.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseTime(s.EndTime)
	if err != nil {
		return nil, err
	}
	return &models.Slot{Start: start, End: end}, nil
}

// flexInt accepts a number, a numeric string or anything else (read as 0).
// Meeting priority arrives in all three forms.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexInt(int(n))
	return nil
}

// envelope is the status/message pair every gateway reply carries.
type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (e *envelope) rejected() bool {
	s := strings.ToLower(strings.TrimSpace(e.Status))
	return s == "error" || s == "failed" || s == "failure"
}

func (e *envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (e *envelope) env() *envelope {
	return e
}

type enveloped interface {
	env() *envelope
}

type findProBody struct {
	ServiceType string `json:"service_type"`
	Description string `json:"description"`
	City        string `json:"city"`
	State       string `json:"state"`
}

type wireProfessional struct {
	ID              string   `json:"id"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
	Name            string   `json:"name"`
	ResponseTimeHrs float64  `json:"response_time_hrs"`
	CallsTaken      int      `json:"calls_taken"`
	ReviewCount     int      `json:"review_count"`
	Rating          float64  `json:"rating"`
	SpecialtyTags   []string `json:"specialty_tags"`
	Expertise       string   `json:"expertise"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	YearsExperience int      `json:"years_experience"`
}

type findProResponse struct {
	envelope
	TotalMatches    int                 `json:"total_matches"`
	Professionals   *[]wireProfessional `json:"professionals"`
	RequestReceived json.RawMessage     `json:"request_received"`
}

func (r *findProResponse) toModel() (*models.MatchResult, error) {
	if r.Professionals == nil {
		return nil, errors.New("professionals missing from find-pro response")
	}
	candidates := make([]models.ProfessionalCandidate, 0, len(*r.Professionals))
	for i, p := range *r.Professionals {
		if p.ID == "" {
			return nil, fmt.Errorf("professionals[%d] has no id", i)
		}
		name := p.Name
		if name == "" {
			name = strings.TrimSpace(p.FirstName + " " + p.LastName)
		}
		candidates = append(candidates, models.ProfessionalCandidate{
			ID:              p.ID,
			Name:            name,
			FirstName:       p.FirstName,
			LastName:        p.LastName,
			Rating:          p.Rating,
			ReviewCount:     p.ReviewCount,
			SpecialtyTags:   p.SpecialtyTags,
			Expertise:       p.Expertise,
			ResponseTimeHrs: p.ResponseTimeHrs,
			CallsTaken:      p.CallsTaken,
			YearsExperience: p.YearsExperience,
			City:            p.City,
			State:           p.State,
		})
	}
	total := r.TotalMatches
	if total == 0 {
		total = len(candidates)
	}
	return &models.MatchResult{
		Candidates:      candidates,
		TotalMatches:    total,
		RequestReceived: receivedFlag(r.RequestReceived),
	}, nil
}

// receivedFlag treats request_received as true unless it is explicitly
// false or null; some deployments echo the request object instead.
func receivedFlag(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch string(raw) {
	case "false", "null":
		return false
	}
	return true
}

type scheduleRequestDetails struct {
	ServiceType       string       `json:"service_type"`
	City              string       `json:"city"`
	State             string       `json:"state"`
	Description       string       `json:"description"`
	AvailabilitySlots []wireWindow `json:"availability_slots"`
	PaymentMethodID   string       `json:"payment_method_id,omitempty"`
	ImageURL          string       `json:"image_url,omitempty"`
}

type scheduleProBody struct {
	RequestDetails        scheduleRequestDetails   `json:"request_details"`
	SelectedProfessionals []models.RankedCandidate `json:"selected_professionals,omitempty"`
}

func newScheduleProBody(req models.ServiceRequest, sel *models.RankedSelection) scheduleProBody {
	body := scheduleProBody{
		RequestDetails: scheduleRequestDetails{
			ServiceType:       req.ServiceType,
			City:              req.City,
			State:             req.State,
			Description:       req.Description,
			AvailabilitySlots: encodeWindows(req.Windows),
			PaymentMethodID:   req.PaymentMethodID,
			ImageURL:          req.ImageRef,
		},
	}
	if sel != nil {
		body.SelectedProfessionals = sel.Ordered()
	}
	return body
}

type ackResponse struct {
	envelope
}

type pendingMeetingsBody struct {
	RequestType string `json:"requestType"`
}

type wireRequestDetails struct {
	ServiceType       string       `json:"service_type"`
	City              string       `json:"city"`
	State             string       `json:"state"`
	Description       string       `json:"description"`
	AvailabilitySlots []wireWindow `json:"availability_slots"`
}

// wireMeeting is the union of the pending-meeting shape (flat fields) and
// the scheduled-meeting shape (fields nested under request_details).
type wireMeeting struct {
	RequestID             string                   `json:"request_id"`
	Timestamp             string                   `json:"timestamp"`
	ServiceType           string                   `json:"service_type"`
	City                  string                   `json:"city"`
	State                 string                   `json:"state"`
	Description           string                   `json:"description"`
	AvailabilitySlots     []wireWindow             `json:"availability_slots"`
	RequestDetails        *wireRequestDetails      `json:"request_details"`
	Priority              flexInt                  `json:"priority"`
	Status                string                   `json:"status"`
	ClientUserID          string                   `json:"client_user_id"`
	UserID                string                   `json:"user_id"`
	ProfessionalID        string                   `json:"professional_id"`
	SelectedProfessionals []models.RankedCandidate `json:"selected_professionals"`
	SelectedTimeSlot      *wireSlot                `json:"selectedTimeSlot"`
	ConfirmedTimestamp    string                   `json:"confirmed_timestamp"`
	RejectionTimestamp    string                   `json:"rejection_timestamp"`
}

func (w wireMeeting) toModel() (models.Meeting, error) {
	if w.RequestID == "" {
		return models.Meeting{}, errors.New("meeting without request_id")
	}
	m := models.Meeting{
		RequestID:   w.RequestID,
		RawStatus:   w.Status,
		ServiceType: w.ServiceType,
		City:        w.City,
		State:       w.State,
		Description: w.Description,
		Priority:    int(w.Priority),
		RequesterID: w.ClientUserID,
	}
	if m.RequesterID == "" {
		m.RequesterID = w.UserID
	}
	slots := w.AvailabilitySlots
	if d := w.RequestDetails; d != nil {
		if m.ServiceType == "" {
			m.ServiceType = d.ServiceType
		}
		if m.City == "" {
			m.City = d.City
		}
		if m.State == "" {
			m.State = d.State
		}
		if m.Description == "" {
			m.Description = d.Description
		}
		if len(slots) == 0 {
			slots = d.AvailabilitySlots
		}
	}

	windows, err := decodeWindows(slots)
	if err != nil {
		return models.Meeting{}, fmt.Errorf("meeting %s: %w", w.RequestID, err)
	}
	m.Windows = windows

	if w.Timestamp != "" {
		created, err := parseTime(w.Timestamp)
		if err != nil {
			return models.Meeting{}, fmt.Errorf("meeting %s timestamp: %w", w.RequestID, err)
		}
		m.Timestamps.Created = created
	}
	if m.Timestamps.Confirmed, err = parseOptionalTime(w.ConfirmedTimestamp); err != nil {
		return models.Meeting{}, fmt.Errorf("meeting %s confirmed_timestamp: %w", w.RequestID, err)
	}
	if m.Timestamps.Rejected, err = parseOptionalTime(w.RejectionTimestamp); err != nil {
		return models.Meeting{}, fmt.Errorf("meeting %s rejection_timestamp: %w", w.RequestID, err)
	}
	if m.ChosenSlot, err = decodeSlot(w.SelectedTimeSlot); err != nil {
		return models.Meeting{}, fmt.Errorf("meeting %s selectedTimeSlot: %w", w.RequestID, err)
	}

	sel := make(map[string]int, len(w.SelectedProfessionals))
	for _, rc := range w.SelectedProfessionals {
		sel[rc.ProfessionalID] = rc.Priority
	}
	m.Participants = models.Participants{
		Selection:      models.NewRankedSelection(sel),
		ProfessionalID: w.ProfessionalID,
	}
	return m, nil
}

type meetingsResponse struct {
	envelope
	Meetings         *[]wireMeeting           `json:"meetings"`
	MeetingsByStatus map[string][]wireMeeting `json:"meetingsByStatus"`
	TotalMeetings    int                      `json:"total_meetings"`
}

func (r *meetingsResponse) toModel() (*models.MeetingSnapshot, error) {
	if r.Meetings == nil && r.MeetingsByStatus == nil {
		return nil, errors.New("meetings missing from response")
	}
	snap := &models.MeetingSnapshot{}
	if r.Meetings != nil {
		snap.Meetings = make([]models.Meeting, 0, len(*r.Meetings))
		for _, wm := range *r.Meetings {
			m, err := wm.toModel()
			if err != nil {
				return nil, err
			}
			snap.Meetings = append(snap.Meetings, m)
		}
	}
	if r.MeetingsByStatus != nil {
		snap.Groups = make(map[string][]models.Meeting, len(r.MeetingsByStatus))
		for group, wms := range r.MeetingsByStatus {
			ms := make([]models.Meeting, 0, len(wms))
			for _, wm := range wms {
				m, err := wm.toModel()
				if err != nil {
					return nil, err
				}
				ms = append(ms, m)
			}
			snap.Groups[group] = ms
		}
		// Only groups were sent: the flat list is their union.
		if r.Meetings == nil {
			groups := make([]string, 0, len(snap.Groups))
			for group := range snap.Groups {
				groups = append(groups, group)
			}
			sort.Strings(groups)
			for _, group := range groups {
				snap.Meetings = append(snap.Meetings, snap.Groups[group]...)
			}
		}
	}
	return snap, nil
}

type handleMeetingBody struct {
	RequestID        string    `json:"request_id"`
	Action           string    `json:"action"`
	SelectedTimeSlot *wireSlot `json:"selectedTimeSlot,omitempty"`
}

type respondBody struct {
	RequestID      string `json:"request_id"`
	ProfessionalID string `json:"professional_id"`
	Action         string `json:"action"`
}

type proRequestsBody struct {
	ProfessionalID string `json:"professional_id"`
}

type wireInboxRequest struct {
	RequestID         string       `json:"request_id"`
	Timestamp         string       `json:"timestamp"`
	ServiceType       string       `json:"service_type"`
	City              string       `json:"city"`
	State             string       `json:"state"`
	Description       string       `json:"description"`
	AvailabilitySlots []wireWindow `json:"availability_slots"`
	ClientID          string       `json:"client_id"`
	ClientName        string       `json:"client_name"`
	ImageURL          string       `json:"image_url"`
	Status            string       `json:"status"`
	Priority          flexInt      `json:"priority"`
}

type proRequestsResponse struct {
	envelope
	TotalRequests int                 `json:"total_requests"`
	Requests      *[]wireInboxRequest `json:"requests"`
}

func (r *proRequestsResponse) toModel() (*models.InboxSnapshot, error) {
	if r.Requests == nil {
		return nil, errors.New("requests missing from pro-requests response")
	}
	snap := &models.InboxSnapshot{
		Total:    r.TotalRequests,
		Requests: make([]models.InboxRequest, 0, len(*r.Requests)),
	}
	for _, wr := range *r.Requests {
		if wr.RequestID == "" {
			return nil, errors.New("inbox request without request_id")
		}
		windows, err := decodeWindows(wr.AvailabilitySlots)
		if err != nil {
			return nil, fmt.Errorf("request %s: %w", wr.RequestID, err)
		}
		req := models.InboxRequest{
			RequestID:   wr.RequestID,
			ServiceType: wr.ServiceType,
			City:        wr.City,
			State:       wr.State,
			Description: wr.Description,
			Windows:     windows,
			ClientID:    wr.ClientID,
			ClientName:  wr.ClientName,
			ImageURL:    wr.ImageURL,
			RawStatus:   wr.Status,
			Priority:    int(wr.Priority),
		}
		if wr.Timestamp != "" {
			if req.Timestamp, err = parseTime(wr.Timestamp); err != nil {
				return nil, fmt.Errorf("request %s timestamp: %w", wr.RequestID, err)
			}
		}
		snap.Requests = append(snap.Requests, req)
	}
	if snap.Total == 0 {
		snap.Total = len(snap.Requests)
	}
	return snap, nil
}
