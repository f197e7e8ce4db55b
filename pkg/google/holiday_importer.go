package google

import (
	"context"
	"fmt"
	"time"

	"github.com/curaflow/curaflow/internal/config"
	"github.com/curaflow/curaflow/pkg/holiday"
	log "github.com/sirupsen/logrus"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrImportNotConfigured = fmt.Errorf("google holiday import is not configured (api key or calendar id missing)")

// HolidayImporter pulls public-holiday dates from a public Google Calendar
// (e.g. the official per-country holiday calendars) into the local holiday
// store. Public calendars are readable with an API key; no OAuth involved.
type HolidayImporter struct {
	cfg            config.Google
	holidayService holiday.HolidayService
}

func NewHolidayImporter(cfg config.Google, holidayService holiday.HolidayService) *HolidayImporter {
	return &HolidayImporter{cfg: cfg, holidayService: holidayService}
}

// ImportYear fetches all all-day events of the configured calendar for the
// given year and stores the dates not yet present. Returns the number of
// holidays added.
func (i *HolidayImporter) ImportYear(ctx context.Context, year int) (int, error) {
	if i.cfg.ApiKey == "" || i.cfg.HolidayCalendarId == "" {
		return 0, ErrImportNotConfigured
	}

	service, err := gcal.NewService(ctx, option.WithAPIKey(i.cfg.ApiKey))
	if err != nil {
		err := fmt.Errorf("unable to create Google Calendar client: %w", err)
		log.Error(err)
		return 0, err
	}

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)

	events, err := service.Events.List(i.cfg.HolidayCalendarId).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %w", err)
		log.Error(err)
		return 0, err
	}

	holidays := make([]holiday.Holiday, 0, len(events.Items))
	for _, item := range events.Items {
		if item.Start == nil || item.Start.Date == "" {
			// holiday calendars only carry all-day events; skip anything else
			log.Debugf("skipping non all-day event: %s", item.Summary)
			continue
		}
		date, err := time.Parse("2006-01-02", item.Start.Date)
		if err != nil {
			log.Warnf("skipping event with unparsable date %q: %v", item.Start.Date, err)
			continue
		}
		holidays = append(holidays, holiday.Holiday{Date: date, Name: item.Summary})
	}

	imported, err := i.holidayService.Import(ctx, holidays)
	if err != nil {
		return 0, err
	}
	log.Infof("Imported %d holidays for %d from calendar %s", imported, year, i.cfg.HolidayCalendarId)
	return imported, nil
}
