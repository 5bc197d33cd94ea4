package store

// Job is a posting owned by one recruiter.
type Job struct {
	ID          string `json:"id"`
	RecruiterID string `json:"recruiter_id"`
	Title       string `json:"title"`
}

// Application links an applicant to a job. RecruiterID is derived from the
// job and is never stored on the application row.
type Application struct {
	ID          string `json:"id"`
	JobID       string `json:"job_id"`
	ApplicantID string `json:"applicant_id"`
	RecruiterID string `json:"recruiter_id"`
	Status      string `json:"status"`
	UpdatedAt   int64  `json:"updated_at"`
}

// HasParticipant reports whether userID is the applicant or the recruiter.
func (a *Application) HasParticipant(userID string) bool {
	return userID != "" && (userID == a.ApplicantID || userID == a.RecruiterID)
}

// Counterpart returns the other party of the application for userID, or ""
// if userID is not a participant.
func (a *Application) Counterpart(userID string) string {
	switch userID {
	case "":
		return ""
	case a.ApplicantID:
		return a.RecruiterID
	case a.RecruiterID:
		return a.ApplicantID
	default:
		return ""
	}
}

// Message is one immutable chat line in an application's thread. ID, Seq and
// CreatedAt are assigned by InsertMessage.
type Message struct {
	ID            string `json:"id"`
	Seq           int64  `json:"seq"`
	ApplicationID string `json:"application_id"`
	SenderID      string `json:"sender_id"`
	ReceiverID    string `json:"receiver_id"`
	Content       string `json:"content"`
	CreatedAt     int64  `json:"created_at"` // unix ms
}

// Before reports whether m sorts before o in thread order.
func (m *Message) Before(o *Message) bool {
	if m.CreatedAt != o.CreatedAt {
		return m.CreatedAt < o.CreatedAt
	}
	if m.Seq != o.Seq {
		return m.Seq < o.Seq
	}
	return m.ID < o.ID
}
