package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shenikar/support_matching/internal/models"
	"github.com/shenikar/support_matching/internal/webhook"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	providerNotificationTitle  = "New Case Assignment"
	submitterNotificationTitle = "Support Services Matched"
)

// notify рассылает уведомления владельцам выбранных служб, затем одно итоговое
// уведомление автору обращения о лучшем совпадении. Ошибки только логируются.
func (s *matchingService) notify(ctx context.Context, report *models.Report, selected []models.Candidate, log *logrus.Entry) {
	var g errgroup.Group
	for _, c := range selected {
		if c.Service.ProviderID == nil {
			continue
		}
		notification := s.providerNotification(report, c)
		g.Go(func() error {
			s.send(ctx, notification, log)
			return nil
		})
	}
	_ = g.Wait()

	if report.SubmitterID == nil {
		log.Debug("Report has no known submitter, skipping summary notification")
		return
	}
	// selected отсортирован, первый элемент - лучшее совпадение
	s.send(ctx, s.submitterNotification(report, selected), log)
}

func (s *matchingService) send(ctx context.Context, n models.Notification, log *logrus.Entry) {
	if err := s.dispatcher.Send(ctx, n); err != nil {
		log.WithError(err).WithField("recipient", n.UserID).Warn("Failed to send notification")
	}
}

func (s *matchingService) providerNotification(report *models.Report, c models.Candidate) models.Notification {
	message := fmt.Sprintf("A new %s urgency case requiring %s support has been matched to your service %q.",
		urgencyLabel(report.Urgency), c.Service.Category, c.Service.DisplayName())

	body := fmt.Sprintf("## %s\n\n%s\n\n- Match score: **%d**\n%s\n[Open your case list](%s)\n",
		providerNotificationTitle, message, c.Score, distanceLine(c), s.cfg.ProviderCasesLink)

	return models.Notification{
		UserID:  *c.Service.ProviderID,
		Type:    models.NotificationTypeMatchFound,
		Title:   providerNotificationTitle,
		Message: message,
		Link:    s.cfg.ProviderCasesLink,
		Metadata: map[string]string{
			"report_id":  report.ID.String(),
			"service_id": c.Service.ID.String(),
		},
		SendEmail: true,
		EmailHTML: s.renderEmail(body),
	}
}

func (s *matchingService) submitterNotification(report *models.Report, selected []models.Candidate) models.Notification {
	top := selected[0]
	message := fmt.Sprintf("We found a %s provider for your report: %s. They will reach out to you soon.",
		top.Service.Category, top.Service.DisplayName())

	body := fmt.Sprintf("## %s\n\n%s\n\n[View your case](%s)\n", submitterNotificationTitle, message, s.cfg.SubmitterCasesLink)

	return models.Notification{
		UserID:  *report.SubmitterID,
		Type:    models.NotificationTypeMatchFound,
		Title:   submitterNotificationTitle,
		Message: message,
		Link:    s.cfg.SubmitterCasesLink,
		Metadata: map[string]string{
			"report_id":  report.ID.String(),
			"service_id": top.Service.ID.String(),
		},
		SendEmail: true,
		EmailHTML: s.renderEmail(body),
	}
}

// renderEmail при ошибке рендера отдает пустое тело: письмо уйдет только текстом уведомления
func (s *matchingService) renderEmail(markdown string) string {
	html, err := webhook.RenderEmailHTML(markdown)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to render notification email")
		return ""
	}
	return html
}

func urgencyLabel(u models.Urgency) string {
	switch v := models.Urgency(strings.ToLower(strings.TrimSpace(string(u)))); v {
	case models.UrgencyHigh, models.UrgencyMedium:
		return string(v)
	default:
		return string(models.UrgencyLow)
	}
}

func distanceLine(c models.Candidate) string {
	if math.IsInf(c.DistanceKm, 1) {
		return ""
	}
	return fmt.Sprintf("- Distance: **%.1f km**\n", c.DistanceKm)
}
