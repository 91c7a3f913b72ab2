package signrequests

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"signing-backend/internal/documents"
	"signing-backend/internal/notifications"
	"signing-backend/internal/projects"
	localstore "signing-backend/internal/shared/storage/object/local"
	"signing-backend/internal/signatures"
)

const memberID = "google:gc"

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func pngDataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notifications.Notification
}

func (d *recordingDispatcher) Notify(ctx context.Context, n notifications.Notification) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, n)
	return nil
}

func (d *recordingDispatcher) ofType(kind notifications.Kind) []notifications.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []notifications.Notification
	for _, n := range d.sent {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc      *Service
	sigs     *signatures.Service
	notifier *recordingDispatcher
	clock    *clock
	doc      documents.Document
}

func newFixture(t *testing.T, docType documents.Type, number, title string) fixture {
	t.Helper()
	ctx := context.Background()
	clk := &clock{now: time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)}

	projectSvc := &projects.Service{Repo: projects.NewMemoryRepo(), Now: clk.Now}
	project, err := projectSvc.Create(ctx, memberID, "Harbor Station")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	docSvc := &documents.Service{Repo: documents.NewMemoryRepo(), Projects: projectSvc, Now: clk.Now}
	amount := int64(4830000)
	doc, err := docSvc.Create(ctx, memberID, project.ID, documents.CreateInput{
		Type:        docType,
		Number:      number,
		Title:       title,
		AmountCents: &amount,
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	notifier := &recordingDispatcher{}
	sigSvc := &signatures.Service{
		Repo:        signatures.NewMemoryRepo(),
		Store:       localstore.New(t.TempDir()),
		Documents:   docSvc,
		Projects:    projectSvc,
		Notifier:    notifier,
		AdminEmails: []string{"ops@example.com", "pm@example.com"},
		Now:         clk.Now,
	}
	svc := &Service{
		Repo:           NewMemoryRepo(),
		Signatures:     sigSvc,
		Documents:      docSvc,
		Projects:       projectSvc,
		Notifier:       notifier,
		TTL:            48 * time.Hour,
		SigningBaseURL: "https://app.example.com/sign",
		Now:            clk.Now,
	}
	return fixture{svc: svc, sigs: sigSvc, notifier: notifier, clock: clk, doc: doc}
}

func (f fixture) invite(t *testing.T, role signatures.Role, email string) Created {
	t.Helper()
	created, err := f.svc.Create(context.Background(), Requester{UserID: memberID, Name: "Gil Contreras", Email: "gil@gc.example.com"}, f.doc.ID, CreateInput{
		Role:           role,
		RecipientEmail: email,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return created
}

func validSubmit() SubmitInput {
	return SubmitInput{SignerName: "Olivia Park", ImageData: pngDataURL()}
}
