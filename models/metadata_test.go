package models

import (
	"errors"
	"testing"
	"time"

	"github.com/mkbenefits/benefits_backend/repository"
	"github.com/mkbenefits/benefits_backend/utils"
)

func TestEachEntityHasAtMostOneDefaultSort(t *testing.T) {
	entities := map[string]repository.Queryable{
		"member":      Member{},
		"provider":    Provider{},
		"service":     ProviderService{},
		"transaction": Transaction{},
	}
	for name, entity := range entities {
		defaults := 0
		for _, f := range entity.SortableFields() {
			if f.IsDefault {
				defaults++
			}
		}
		if defaults > 1 {
			t.Errorf("%s declares %d default sort fields", name, defaults)
		}
	}
}

func TestBusinessKeysAreSearchable(t *testing.T) {
	// The ingestion workflow resolves these by equality; losing one of
	// these declarations silently breaks submission.
	cases := []struct {
		entity repository.Queryable
		field  string
	}{
		{Provider{}, "number"},
		{Member{}, "number"},
		{ProviderService{}, "code"},
	}
	for _, tc := range cases {
		found := false
		for _, f := range tc.entity.SearchableFields() {
			if f.Name == tc.field && f.Match == repository.MatchEquals {
				found = true
			}
		}
		if !found {
			t.Errorf("%T: field %q must be searchable by equality", tc.entity, tc.field)
		}
	}
}

func TestParsedServiceDate(t *testing.T) {
	input := NewTransaction{ServiceDate: "2026-03-15"}
	got, err := input.ParsedServiceDate()
	if err != nil {
		t.Fatalf("ParsedServiceDate error: %v", err)
	}
	want := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParsedServiceDateRejectsMalformedInput(t *testing.T) {
	for _, bad := range []string{"", "15/03/2026", "2026-3-15", "not-a-date"} {
		input := NewTransaction{ServiceDate: bad}
		if _, err := input.ParsedServiceDate(); !errors.Is(err, utils.ErrorValidation) {
			t.Fatalf("date %q: expected ErrorValidation, got %v", bad, err)
		}
	}
}

func TestNewMemberApplyDefaultsActive(t *testing.T) {
	var m Member
	input := NewMember{Number: 7, FirstName: "Sam", LastName: "Vale"}
	input.Apply(&m)
	if m.IsActive == nil || !*m.IsActive {
		t.Fatal("a new member defaults to active")
	}

	inactive := false
	input.IsActive = &inactive
	input.Apply(&m)
	if m.IsActive == nil || *m.IsActive {
		t.Fatal("an explicit is_active=false must stick")
	}
}
