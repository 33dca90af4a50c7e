package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/coursehub-backend/internal/data/repos/testutil"
)

func TestValidateEventLink(t *testing.T) {
	cases := []struct {
		link string
		ok   bool
	}{
		{"https://example.com/fair", true},
		{"http://example.com", true},
		{"", false},
		{"example.com/fair", false},
		{"/events/1", false},
		{"ftp://example.com/file", false},
		{"https://", false},
	}
	for _, tc := range cases {
		err := validateEventLink(tc.link)
		if (err == nil) != tc.ok {
			t.Fatalf("validateEventLink(%q): ok=%v err=%v", tc.link, tc.ok, err)
		}
	}
}

func TestEventLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewEventService(env.db, env.log, env.events, env.media)
	admin := testutil.SeedAdmin(t, env.db, "a@example.com")
	su, _ := testutil.SeedStudent(t, env.db, "s@example.com", nil)
	date := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.Create(as(su), EventInput{Name: "Fair", Date: date, Link: "https://example.com"})
	wantStatus(t, err, http.StatusForbidden)
	_, err = svc.Create(as(admin), EventInput{Name: "Fair", Date: date, Link: "example.com"})
	wantStatus(t, err, http.StatusBadRequest)

	png := upload("banner.png", pngBytes(t))
	ev, err := svc.Create(as(admin), EventInput{Name: "Fair", Date: date, Time: "10:00 - 12:00", Link: "https://example.com", Image: &png})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ev.ImageKey == "" || !env.bucket.has(ev.ImageKey) {
		t.Fatalf("event image not stored: %+v", ev)
	}

	bad := "mailto:x@example.com"
	_, err = svc.Update(as(admin), ev.ID, EventUpdate{Link: &bad})
	wantStatus(t, err, http.StatusBadRequest)

	updated, err := svc.Update(as(admin), ev.ID, EventUpdate{RemoveImage: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Image != "" || env.bucket.has(ev.ImageKey) {
		t.Fatalf("image should be cleared and its blob removed")
	}

	list, err := svc.List(as(su))
	if err != nil || len(list) != 1 {
		t.Fatalf("List: err=%v len=%d", err, len(list))
	}
	if err := svc.Delete(as(admin), ev.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	_, err = svc.Get(as(su), ev.ID)
	wantStatus(t, err, http.StatusNotFound)
}
