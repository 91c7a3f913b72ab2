package signatures

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"

	"signing-backend/internal/documents"
	"signing-backend/internal/notifications"
	"signing-backend/internal/projects"
	localstore "signing-backend/internal/shared/storage/object/local"
)

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

func (d *recordingDispatcher) Sent() []notifications.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]notifications.Notification, len(d.sent))
	copy(out, d.sent)
	return out
}

type fixture struct {
	svc      *Service
	notifier *recordingDispatcher
	project  projects.Project
	doc      documents.Document
}

const memberID = "google:gc"

func newFixture(t *testing.T, docType documents.Type, number, title string, amount *int64) fixture {
	t.Helper()
	ctx := context.Background()

	projectSvc := projects.NewService(projects.NewMemoryRepo())
	project, err := projectSvc.Create(ctx, memberID, "Harbor Station")
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	docSvc := &documents.Service{Repo: documents.NewMemoryRepo(), Projects: projectSvc}
	doc, err := docSvc.Create(ctx, memberID, project.ID, documents.CreateInput{
		Type:        docType,
		Number:      number,
		Title:       title,
		AmountCents: amount,
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	notifier := &recordingDispatcher{}
	svc := &Service{
		Repo:        NewMemoryRepo(),
		Store:       localstore.New(t.TempDir()),
		Documents:   docSvc,
		Projects:    projectSvc,
		Notifier:    notifier,
		AdminEmails: []string{"ops@example.com", "pm@example.com"},
	}
	return fixture{svc: svc, notifier: notifier, project: project, doc: doc}
}

func signInput(role Role, name string) CreateInput {
	return CreateInput{Role: role, SignerName: name, ImageData: pngDataURL()}
}
