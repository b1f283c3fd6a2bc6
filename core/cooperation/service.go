package cooperation

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/teayouth/portal/core"
)

type Service struct {
	repo       Repository
	mailSvc    core.EmailService
	adminEmail string
}

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, adminEmail: conf.AdminEmail}
}

// Submit records a new application and notifies the portal administrators.
func (svc *Service) Submit(ctx context.Context, na NewApplication) (Application, error) {
	now := time.Now().UTC()
	app := Application{
		SchoolName:    na.SchoolName,
		ContactPerson: na.ContactPerson,
		ContactPhone:  na.ContactPhone,
		ContactEmail:  na.ContactEmail,
		Province:      null.NewString(na.Province, na.Province != ""),
		City:          null.NewString(na.City, na.City != ""),
		Message:       null.NewString(na.Message, na.Message != ""),
		Status:        StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	app, err := svc.repo.CreateApplication(ctx, app)
	if err != nil {
		return Application{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: svc.adminEmail}},
		Subject: "New cooperation application",
		TextContent: fmt.Sprintf(
			"School: %s\nContact: %s (%s, %s)\n\n%s",
			app.SchoolName, app.ContactPerson, app.ContactPhone, app.ContactEmail, app.Message.String,
		),
	})
	return app, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplicationByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, status string) ([]Application, error) {
	return svc.repo.QueryApplications(ctx, status)
}

// SetStatus transitions an application to one of the known statuses.
func (svc *Service) SetStatus(ctx context.Context, id, status string) (Application, error) {
	var known bool
	for _, s := range Statuses {
		if s == status {
			known = true
			break
		}
	}
	if !known {
		return Application{}, core.NewValidationError(
			ErrInvalidStatus, core.FieldError{Field: "status", Error: ErrInvalidStatus.Error()})
	}
	return svc.repo.SetApplicationStatus(ctx, id, status)
}
