// Package importer reconciles the conference workbooks into the database in one transaction:
// countries, cities, organizers, moderators, jury, participants, events, activities.
package importer

import (
	"context"
	"errors"
	"fmt"

	"cybershield/internal/models"
	"cybershield/internal/repository"
	"cybershield/internal/workbook"

	"github.com/sirupsen/logrus"
)

var (
	ErrOrphanActivity = errors.New("activity is not linked to an event")
	ErrInvalidMapping = errors.New("invalid city-country mapping")
)

// EventPolicy decides what happens to an activity row with no current event.
type EventPolicy int

const (
	// RequireEvent fails the whole import.
	RequireEvent EventPolicy = iota
	// AllowOrphan stores the activity without an event.
	AllowOrphan
)

func ParsePolicy(s string) (EventPolicy, error) {
	switch s {
	case "strict", "":
		return RequireEvent, nil
	case "tolerant":
		return AllowOrphan, nil
	}
	return RequireEvent, fmt.Errorf("unknown event policy %q (want strict or tolerant)", s)
}

func (p EventPolicy) String() string {
	if p == AllowOrphan {
		return "tolerant"
	}
	return "strict"
}

type Options struct {
	Files   Files
	Layouts map[models.Role]Layout
	Policy  EventPolicy
	// LegacyCityCountry resolves a city's country by the city's own row index.
	LegacyCityCountry bool
	// CityCountries maps city ordinals to country ordinals. Ignored in legacy mode.
	CityCountries map[int]int
}

func DefaultOptions() Options {
	return Options{Files: DefaultFiles(), Layouts: DefaultLayouts(), Policy: RequireEvent}
}

// Store is the persistence surface one import needs. *repository.Repository satisfies it.
type Store interface {
	UpsertCountry(ctx context.Context, name string, isoCode *string) (uint, error)
	UpsertCity(ctx context.Context, name string, countryID *uint) (uint, error)
	UpsertUser(ctx context.Context, email string, apply func(u *models.User, created bool)) (uint, error)
	UpsertEvent(ctx context.Context, title string, apply func(e *models.Event, created bool)) (*models.Event, error)
	ReplaceEventOrganizers(ctx context.Context, eventID uint, organizerIDs []uint) error
	UpsertActivity(ctx context.Context, eventID *uint, title string, apply func(a *models.Activity, created bool)) (uint, error)
	ReplaceActivityJury(ctx context.Context, activityID uint, juryIDs []uint) error
	CreateTeam(ctx context.Context, team *models.Team, participantIDs []uint) error
}

type Importer struct {
	repo   *repository.Repository
	source workbook.Source
	opts   Options
	log    logrus.FieldLogger
}

func New(repo *repository.Repository, source workbook.Source, opts Options, log logrus.FieldLogger) *Importer {
	if opts.Layouts == nil {
		opts.Layouts = DefaultLayouts()
	}
	if opts.Files == (Files{}) {
		opts.Files = DefaultFiles()
	}
	return &Importer{repo: repo, source: source, opts: opts, log: log}
}

func (im *Importer) Options() Options { return im.opts }

func (im *Importer) Source() workbook.Source { return im.source }

// sheets holds every workbook read for one run.
type sheets struct {
	countries  [][]string
	cities     [][]string
	people     map[models.Role][][]string
	events     [][]string
	activities [][]string
}

func (im *Importer) read(ctx context.Context) (*sheets, error) {
	get := func(name string) ([][]string, error) {
		return im.source.Rows(ctx, name)
	}

	s := &sheets{people: make(map[models.Role][][]string, len(models.Roles))}
	var err error
	if s.countries, err = get(im.opts.Files.Countries); err != nil {
		return nil, err
	}
	if s.cities, err = get(im.opts.Files.Cities); err != nil {
		return nil, err
	}
	for _, role := range models.Roles {
		if s.people[role], err = get(im.opts.Files.People(role)); err != nil {
			return nil, err
		}
	}
	if s.events, err = get(im.opts.Files.Events); err != nil {
		return nil, err
	}
	if s.activities, err = get(im.opts.Files.Activities); err != nil {
		return nil, err
	}
	return s, nil
}

// Import reads all workbooks and applies them in a single transaction. Nothing is written
// when any stage fails.
func (im *Importer) Import(ctx context.Context) (Report, error) {
	s, err := im.read(ctx)
	if err != nil {
		return Report{}, err
	}
	if !im.opts.LegacyCityCountry {
		if err := validateMapping(im.opts.CityCountries, countCountries(s.countries)); err != nil {
			return Report{}, err
		}
	}

	var report Report
	err = im.repo.WithTransaction(ctx, func(tx *repository.Repository) error {
		report, err = im.apply(ctx, tx, s)
		return err
	})
	if err != nil {
		return Report{}, err
	}
	im.log.WithFields(report.Fields()).Info("import finished")
	return report, nil
}

func (im *Importer) apply(ctx context.Context, store Store, s *sheets) (Report, error) {
	r := &run{
		store:  store,
		opts:   im.opts,
		log:    im.log,
		people: make(map[models.Role]*personIndex, len(models.Roles)),
	}
	var report Report

	countries, err := r.loadCountries(ctx, s.countries)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", im.opts.Files.Countries, err)
	}
	report = report.Add(countries)

	cities, err := r.loadCities(ctx, s.cities)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", im.opts.Files.Cities, err)
	}
	report = report.Add(cities)

	for _, role := range models.Roles {
		people, err := r.loadPeople(ctx, role, s.people[role])
		if err != nil {
			return Report{}, fmt.Errorf("%s: %w", im.opts.Files.People(role), err)
		}
		report = report.Add(people)
	}

	events, err := r.loadEvents(ctx, s.events)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", im.opts.Files.Events, err)
	}
	report = report.Add(events)

	activities, err := r.loadActivities(ctx, s.activities)
	if err != nil {
		return Report{}, fmt.Errorf("%s: %w", im.opts.Files.Activities, err)
	}
	return report.Add(activities), nil
}

// run carries the index maps of one import. It is dropped when Import returns.
type run struct {
	store Store
	opts  Options
	log   logrus.FieldLogger

	countries map[int]uint
	cities    map[int]city
	people    map[models.Role]*personIndex
	events    map[string]eventRef
}
