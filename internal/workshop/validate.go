package workshop

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sharath018/workshop-checkin-backend/internal/apperr"
	"gorm.io/datatypes"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// normalize applies defaults and validates a full workshop description.
// Drafts skip the scheduling checks until they are published.
func normalize(req *CreateRequest) error {
	if req.CheckInType == "" {
		req.CheckInType = CheckInSystem
	}
	req.DTStart = utc(req.DTStart)
	req.DTEnd = utc(req.DTEnd)
	req.CheckInOpens = utc(req.CheckInOpens)
	if req.CheckInOpens == nil && req.DTStart != nil {
		opens := req.DTStart.Add(-DefaultCheckInLead)
		req.CheckInOpens = &opens
	}

	if err := validate.Struct(req); err != nil {
		return translateValidation(err)
	}

	if req.CheckInType == CheckInByLink && (req.CheckInLink == nil || strings.TrimSpace(*req.CheckInLink) == "") {
		return apperr.Validation("check_in_link is required when check_in_type is %s", CheckInByLink)
	}

	if req.IsDraft {
		return nil
	}

	switch {
	case req.DTStart == nil:
		return apperr.Validation("dtstart is required for a published workshop")
	case req.DTEnd == nil:
		return apperr.Validation("dtend is required for a published workshop")
	case req.Language == nil:
		return apperr.Validation("language is required for a published workshop")
	}
	if !req.DTStart.Before(*req.DTEnd) {
		return apperr.Validation("dtstart must be before dtend")
	}
	if !req.CheckInOpens.Before(*req.DTStart) {
		return apperr.Validation("check_in_opens must be before dtstart")
	}
	return nil
}

func translateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("%s", err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return apperr.Validation("%s", strings.Join(msgs, "; "))
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

// requestFromWorkshop turns a stored workshop back into a description that can
// be patched and re-validated as a whole.
func requestFromWorkshop(w *Workshop) CreateRequest {
	active := w.IsActive
	return CreateRequest{
		EnglishName:        w.EnglishName,
		RussianName:        w.RussianName,
		EnglishDescription: w.EnglishDescription,
		RussianDescription: w.RussianDescription,
		Language:           w.Language,
		Hosts:              []Host(w.Hosts),
		Badges:             []Badge(w.Badges),
		Links:              []Link(w.Links),
		DTStart:            w.DTStart,
		DTEnd:              w.DTEnd,
		CheckInOpens:       w.CheckInOpens,
		Place:              w.Place,
		Capacity:           w.Capacity,
		CheckInType:        w.CheckInType,
		CheckInLink:        w.CheckInLink,
		IsActive:           &active,
		IsDraft:            w.IsDraft,
	}
}

// applyPatch merges the present patch fields into req and returns the changed
// columns for a partial UPDATE.
func applyPatch(req *CreateRequest, p UpdateRequest) map[string]any {
	cols := map[string]any{}
	if p.EnglishName != nil {
		req.EnglishName = *p.EnglishName
		cols["english_name"] = *p.EnglishName
	}
	if p.RussianName != nil {
		req.RussianName = *p.RussianName
		cols["russian_name"] = *p.RussianName
	}
	if p.EnglishDescription != nil {
		req.EnglishDescription = *p.EnglishDescription
		cols["english_description"] = *p.EnglishDescription
	}
	if p.RussianDescription != nil {
		req.RussianDescription = *p.RussianDescription
		cols["russian_description"] = *p.RussianDescription
	}
	if p.Language != nil {
		req.Language = p.Language
		cols["language"] = *p.Language
	}
	if p.Hosts != nil {
		req.Hosts = *p.Hosts
	}
	if p.Badges != nil {
		req.Badges = *p.Badges
	}
	if p.Links != nil {
		req.Links = *p.Links
	}
	if p.DTStart != nil {
		req.DTStart = p.DTStart
	}
	if p.DTEnd != nil {
		req.DTEnd = p.DTEnd
	}
	if p.CheckInOpens != nil {
		req.CheckInOpens = p.CheckInOpens
	}
	if p.Place != nil {
		req.Place = *p.Place
		cols["place"] = *p.Place
	}
	if p.Capacity != nil {
		req.Capacity = p.Capacity
		cols["capacity"] = *p.Capacity
	}
	if p.CheckInType != nil {
		req.CheckInType = *p.CheckInType
	}
	if p.CheckInLink != nil {
		req.CheckInLink = p.CheckInLink
		cols["check_in_link"] = *p.CheckInLink
	}
	if p.IsDraft != nil {
		req.IsDraft = *p.IsDraft
		cols["is_draft"] = *p.IsDraft
	}
	return cols
}

// finishPatch adds the columns whose final value is only known after normalize.
func finishPatch(cols map[string]any, req *CreateRequest, p UpdateRequest, before *Workshop) {
	if p.Hosts != nil {
		cols["hosts"] = hostsOf(req.Hosts)
	}
	if p.Badges != nil {
		cols["badges"] = badgesOf(req.Badges)
	}
	if p.Links != nil {
		cols["links"] = linksOf(req.Links)
	}
	if p.DTStart != nil {
		cols["dtstart"] = *req.DTStart
	}
	if p.DTEnd != nil {
		cols["dtend"] = *req.DTEnd
	}
	if req.CheckInOpens != nil && (before.CheckInOpens == nil || !before.CheckInOpens.Equal(*req.CheckInOpens)) {
		cols["check_in_opens"] = *req.CheckInOpens
	}
	if p.CheckInType != nil || before.CheckInType != req.CheckInType {
		cols["check_in_type"] = req.CheckInType
	}
}

func newWorkshop(req *CreateRequest, createdBy string) *Workshop {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return &Workshop{
		EnglishName:        req.EnglishName,
		RussianName:        req.RussianName,
		EnglishDescription: req.EnglishDescription,
		RussianDescription: req.RussianDescription,
		Language:           req.Language,
		Hosts:              hostsOf(req.Hosts),
		Badges:             badgesOf(req.Badges),
		Links:              linksOf(req.Links),
		DTStart:            req.DTStart,
		DTEnd:              req.DTEnd,
		CheckInOpens:       req.CheckInOpens,
		Place:              req.Place,
		Capacity:           req.Capacity,
		CheckInType:        req.CheckInType,
		CheckInLink:        req.CheckInLink,
		IsActive:           active,
		IsDraft:            req.IsDraft,
		CreatedBy:          createdBy,
	}
}

func hostsOf(v []Host) datatypes.JSONSlice[Host] {
	if v == nil {
		v = []Host{}
	}
	return datatypes.NewJSONSlice(v)
}

func badgesOf(v []Badge) datatypes.JSONSlice[Badge] {
	if v == nil {
		v = []Badge{}
	}
	return datatypes.NewJSONSlice(v)
}

func linksOf(v []Link) datatypes.JSONSlice[Link] {
	if v == nil {
		v = []Link{}
	}
	return datatypes.NewJSONSlice(v)
}
