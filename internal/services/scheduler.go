package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"alfredoptarigan/recruiter/internal/models"
)

// MeetingTimeLayout is how interview slots are rendered in invitations.
const MeetingTimeLayout = "2006-01-02 15:04 IST"

var ist = time.FixedZone("IST", 5*60*60+30*60)

// MeetingScheduler books interviews into the weekly Friday 13:30 IST slot.
// It does not talk to a real calendar: meetings are minted locally.
type MeetingScheduler struct {
	linkBase string
	now      func() time.Time
}

func NewMeetingScheduler(linkBase string) *MeetingScheduler {
	if linkBase == "" {
		linkBase = "https://zoom.us/j/"
	}
	return &MeetingScheduler{linkBase: linkBase, now: time.Now}
}

func (s *MeetingScheduler) ScheduleMeeting(ctx context.Context, name string, contact models.Contact) (*models.MeetingInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if contact.Email == "" {
		return nil, fmt.Errorf("candidate has no email to invite")
	}

	meetingID := fmt.Sprintf("%010d", uuid.New().ID())
	slot := NextInterviewSlot(s.now())

	log.Printf("📅 Scheduled interview %s for %s at %s\n", meetingID, contact.Email, slot.Format(MeetingTimeLayout))

	return &models.MeetingInfo{
		CandidateEmail: contact.Email,
		CandidateName:  name,
		MeetingID:      meetingID,
		MeetingLink:    s.linkBase + meetingID,
		MeetingTime:    slot.Format(MeetingTimeLayout),
	}, nil
}

// NextInterviewSlot returns the next Friday 13:30 IST at or after now. When
// now is a Friday past 13:30 the slot moves to the following week.
func NextInterviewSlot(now time.Time) time.Time {
	local := now.In(ist)

	days := (int(time.Friday) - int(local.Weekday()) + 7) % 7
	slot := time.Date(local.Year(), local.Month(), local.Day()+days, 13, 30, 0, 0, ist)
	if slot.Before(local) {
		slot = slot.AddDate(0, 0, 7)
	}
	return slot
}
