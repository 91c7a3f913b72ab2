package signatures

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"signing-backend/internal/documents"
	"signing-backend/internal/notifications"
	"signing-backend/internal/projects"
)

func TestChangeOrderNotifiesEachAdminOnce(t *testing.T) {
	amount := int64(1250000)
	f := newFixture(t, documents.TypeChangeOrder, "5", "Added storefront glazing", &amount)
	ctx := context.Background()

	for _, role := range []Role{RoleOwner, RoleContractor} {
		outcome, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(role, "Signer "+string(role)))
		if err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
		if outcome.FullySigned || outcome.Notified {
			t.Fatalf("document should not be complete after %s", role)
		}
	}
	if len(f.notifier.Sent()) != 0 {
		t.Fatalf("expected no notifications before completion")
	}

	outcome, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(RoleArchitect, "Dana Reyes"))
	if err != nil {
		t.Fatalf("create architect: %v", err)
	}
	if !outcome.FullySigned || !outcome.Notified {
		t.Fatalf("expected completion with notification, got %+v", outcome)
	}

	sent := f.notifier.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected one notification per admin, got %d", len(sent))
	}
	for i, email := range []string{"ops@example.com", "pm@example.com"} {
		n := sent[i]
		if n.Type != notifications.KindChangeOrderFullySigned {
			t.Fatalf("unexpected kind %q", n.Type)
		}
		if n.RecipientEmail != email || n.ItemNumber != "CO-5" || n.ProjectName != "Harbor Station" || n.Amount != "$12,500.00" {
			t.Fatalf("unexpected notification %+v", n)
		}
	}

	// A later re-check must not notify again.
	status, err := f.svc.List(ctx, memberID, f.doc.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !status.FullySigned || len(status.Records) != 3 {
		t.Fatalf("unexpected status %+v", status)
	}
	if _, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(RoleArchitect, "Dana Reyes")); !errors.Is(err, ErrRoleAlreadySigned) {
		t.Fatalf("expected ErrRoleAlreadySigned, got %v", err)
	}
	if len(f.notifier.Sent()) != 2 {
		t.Fatalf("expected no further notifications")
	}
}

func TestPayApplicationCompletionKind(t *testing.T) {
	f := newFixture(t, documents.TypePayApplication, "3", "March progress billing", nil)
	ctx := context.Background()
	for _, role := range RequiredRoles {
		if _, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(role, "Signer")); err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
	}
	sent := f.notifier.Sent()
	if len(sent) != 2 || sent[0].Type != notifications.KindPayApplicationFullySigned || sent[0].ItemNumber != "Pay App #3" {
		t.Fatalf("unexpected notifications %+v", sent)
	}
	if sent[0].Amount != "" {
		t.Fatalf("expected no amount, got %q", sent[0].Amount)
	}
}

func TestCreateDeleteCreateYieldsFreshRecord(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "7", "Owner-directed finishes", nil)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(RoleOwner, "Pat Kim"))
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := f.svc.Delete(ctx, memberID, first.Record.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Delete(ctx, memberID, first.Record.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	title := "Owner's Rep"
	in := signInput(RoleOwner, "Pat Kim")
	in.SignerTitle = &title
	second, err := f.svc.Create(ctx, memberID, f.doc.ID, in)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if second.Record.ID == first.Record.ID {
		t.Fatalf("expected a fresh record id")
	}
	if second.Record.SignerTitle == nil || *second.Record.SignerTitle != title {
		t.Fatalf("expected signer title to be kept")
	}

	status, err := f.svc.List(ctx, memberID, f.doc.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(status.Records) != 1 || status.Records[0].ID != second.Record.ID {
		t.Fatalf("unexpected records %+v", status.Records)
	}
}

func TestDeleteAfterCompletionAllowsSecondNotice(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "9", "Roof drain relocation", nil)
	ctx := context.Background()

	var owner Record
	for _, role := range RequiredRoles {
		outcome, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(role, "Signer"))
		if err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
		if role == RoleOwner {
			owner = outcome.Record
		}
	}
	if _, err := f.svc.Delete(ctx, memberID, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	outcome, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(RoleOwner, "New Owner Rep"))
	if err != nil {
		t.Fatalf("re-sign: %v", err)
	}
	if !outcome.Notified {
		t.Fatalf("expected re-completion to notify")
	}
	if got := len(f.notifier.Sent()); got != 4 {
		t.Fatalf("expected two rounds of notifications, got %d", got)
	}
}

// claimHookRepo runs beforeClaim once, ahead of the first completion claim.
type claimHookRepo struct {
	documents.DocumentsRepo
	once        sync.Once
	beforeClaim func()
}

func (r *claimHookRepo) MarkFullySignedNotified(ctx context.Context, documentID string, at time.Time) (bool, error) {
	r.once.Do(r.beforeClaim)
	return r.DocumentsRepo.MarkFullySignedNotified(ctx, documentID, at)
}

func TestDeleteDuringCompletionReleasesGuard(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "10", "Curtain wall anchors", nil)
	ctx := context.Background()

	var contractor Record
	for _, role := range []Role{RoleContractor, RoleArchitect} {
		outcome, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(role, "Signer"))
		if err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
		if role == RoleContractor {
			contractor = outcome.Record
		}
	}

	f.svc.Documents.Repo = &claimHookRepo{
		DocumentsRepo: f.svc.Documents.Repo,
		beforeClaim: func() {
			if _, err := f.svc.Delete(ctx, memberID, contractor.ID); err != nil {
				t.Errorf("Delete: %v", err)
			}
		},
	}

	outcome, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(RoleOwner, "Owner Rep"))
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	if outcome.Notified || outcome.FullySigned {
		t.Fatalf("expected incomplete outcome, got %+v", outcome)
	}
	if len(outcome.MissingRoles) != 1 || outcome.MissingRoles[0] != RoleContractor {
		t.Fatalf("expected contractor missing, got %v", outcome.MissingRoles)
	}
	if got := len(f.notifier.Sent()); got != 0 {
		t.Fatalf("expected no notices, got %d", got)
	}
	doc, err := f.svc.Documents.Lookup(ctx, f.doc.ID)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if doc.FullySignedNotifiedAt != nil {
		t.Fatalf("expected guard released, got %v", doc.FullySignedNotifiedAt)
	}

	outcome, err = f.svc.Create(ctx, memberID, f.doc.ID, signInput(RoleContractor, "Signer"))
	if err != nil {
		t.Fatalf("re-sign contractor: %v", err)
	}
	if !outcome.Notified {
		t.Fatalf("expected real completion to notify")
	}
	if got := len(f.notifier.Sent()); got != 2 {
		t.Fatalf("expected one notice per admin, got %d", got)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "1", "Scope", nil)
	ctx := context.Background()

	cases := map[string]CreateInput{
		"blank name":   {Role: RoleOwner, SignerName: "  ", ImageData: pngDataURL()},
		"unknown role": {Role: "inspector", SignerName: "A", ImageData: pngDataURL()},
		"no image":     {Role: RoleOwner, SignerName: "A"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, memberID, f.doc.ID, in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestNonMemberCannotSignOrDelete(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "2", "Scope", nil)
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, "google:stranger", f.doc.ID, signInput(RoleOwner, "X")); !errors.Is(err, projects.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on create, got %v", err)
	}
	outcome, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(RoleOwner, "X"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Delete(ctx, "google:stranger", outcome.Record.ID); !errors.Is(err, projects.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on delete, got %v", err)
	}
	if _, _, err := f.svc.OpenImage(ctx, "google:stranger", outcome.Record.ID); !errors.Is(err, projects.ErrForbidden) {
		t.Fatalf("expected ErrForbidden on image, got %v", err)
	}
}

func TestOpenImageReturnsStoredBytes(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "4", "Scope", nil)
	ctx := context.Background()

	outcome, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(RoleContractor, "Lee"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec, rc, err := f.svc.OpenImage(ctx, memberID, outcome.Record.ID)
	if err != nil {
		t.Fatalf("OpenImage: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read image: %v", err)
	}
	if string(data) != string(pngBytes) || rec.ImageMimeType != "image/png" {
		t.Fatalf("unexpected image payload")
	}
}

func TestConcurrentSameRoleCreatesOneRecord(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "6", "Scope", nil)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		rejected int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(RoleArchitect, "Dana"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrRoleAlreadySigned):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if created != 1 || rejected != 9 {
		t.Fatalf("expected 1 create and 9 rejections, got %d/%d", created, rejected)
	}
}

func TestNotificationFailureDoesNotFailSignature(t *testing.T) {
	f := newFixture(t, documents.TypeChangeOrder, "8", "Scope", nil)
	f.svc.Notifier = notifications.DispatcherFunc(func(ctx context.Context, n notifications.Notification) error {
		return errors.New("email function down")
	})
	ctx := context.Background()
	for _, role := range RequiredRoles {
		if _, err := f.svc.Create(ctx, memberID, f.doc.ID, signInput(role, "Signer")); err != nil {
			t.Fatalf("create %s: %v", role, err)
		}
	}
	doc, err := f.svc.Documents.Lookup(ctx, f.doc.ID)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if doc.FullySignedNotifiedAt == nil {
		t.Fatalf("expected guard to stay claimed after failed delivery")
	}
}
