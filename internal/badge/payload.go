package badge

import (
	"encoding/json"
	"fmt"
)

// Payload is the metadata signed into a badge image.
type Payload struct {
	BadgeID    int    `json:"ID"`
	CourseCode string `json:"CC"`
	CourseName string `json:"CN"`
	Level      int    `json:"AL"`
	Program    string `json:"PR"`
	Name       string `json:"FN"`
	Email      string `json:"EM"`
	RefereeID  int    `json:"RI,omitempty"`
}

var requiredKeys = []string{"ID", "CC", "CN", "AL", "PR", "FN", "EM"}

// Payload maps the record to the fields embedded in its image.
func (r Record) Payload() Payload {
	p := Payload{
		BadgeID:    r.ID,
		CourseCode: r.CourseCode,
		CourseName: r.CourseName,
		Level:      r.Level,
	}
	switch o := r.Owner.(type) {
	case Participant:
		p.Program = o.Relay
		p.Name = o.Name
		p.Email = o.Email
	case Referee:
		p.Program = o.Template
		p.Name = o.Name
		p.Email = o.Email
		p.RefereeID = o.ID
	default:
		panic(fmt.Sprintf("badge: unknown owner type %T", r.Owner))
	}
	return p
}

// Marshal returns the compact JSON form of p.
func (p Payload) Marshal() ([]byte, error) {
	return json.Marshal(p)
}

// ParsePayload decodes a payload and checks that every required key is set.
func ParsePayload(data []byte) (Payload, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Payload{}, reject(MalformedPayload, "%v", err)
	}
	for _, k := range requiredKeys {
		if _, ok := fields[k]; !ok {
			return Payload{}, reject(MissingField, "%s", k)
		}
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, reject(MalformedPayload, "%v", err)
	}
	return p, nil
}

// check compares an extracted payload with the live record.
func (p Payload) check(live Payload) error {
	switch {
	case p.Name != live.Name:
		return reject(NameMismatch, "%q != %q", p.Name, live.Name)
	case p.Email != live.Email:
		return reject(EmailMismatch, "%q != %q", p.Email, live.Email)
	case p.CourseCode != live.CourseCode:
		return reject(CourseCodeMismatch, "%q != %q", p.CourseCode, live.CourseCode)
	case p.CourseName != live.CourseName:
		return reject(CourseNameMismatch, "%q != %q", p.CourseName, live.CourseName)
	case p.Program != live.Program:
		return reject(ProgramMismatch, "%q != %q", p.Program, live.Program)
	case p.Level != live.Level:
		return reject(LevelMismatch, "%d != %d", p.Level, live.Level)
	case p.RefereeID != live.RefereeID:
		return reject(RefereeMismatch, "%d != %d", p.RefereeID, live.RefereeID)
	}
	return nil
}
