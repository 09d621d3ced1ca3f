package charts

import (
	"context"
	"fmt"

	"github.com/dalemusser/staydesk/internal/app/system/aggregate"
	"github.com/dalemusser/staydesk/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source is the slice of the marketplace API the dashboard reads.
type Source interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
}

// Recorder receives dashboard instrumentation. *metrics.Metrics satisfies it.
type Recorder interface {
	FetchFailed(dimension string)
	SeriesGroups(dimension string, n int)
}

// FetchError reports a dimension whose collection could not be fetched.
// The dashboard renders that dimension empty.
type FetchError struct {
	Dimension string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Dimension, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Result is one fully aggregated dashboard.
type Result struct {
	Users     int
	Rooms     aggregate.Series
	Bookings  aggregate.Series
	Locations aggregate.Series

	// Failures holds one entry per dimension that failed to load.
	Failures map[string]*FetchError
}

// Failed reports whether dim failed to load.
func (r Result) Failed(dim string) bool {
	_, ok := r.Failures[dim]
	return ok
}

// Builder runs the four dashboard pipelines.
type Builder struct {
	Source     Source
	Metrics    Recorder
	Normalizer aggregate.Normalizer
	Log        *zap.Logger
}

// Build fetches users, rooms, bookings and locations concurrently and
// aggregates each. A failed fetch never cancels the others; its dimension
// comes back empty and is listed in Result.Failures.
func (b *Builder) Build(ctx context.Context) Result {
	var (
		users                []models.User
		rooms                []models.Room
		bookings             []models.Booking
		locations            []models.Location
		errUsers, errRooms   error
		errBookings, errLocs error
	)

	// Plain errgroup.Group: no derived context, so one failure does not
	// cancel the siblings. Each goroutine writes only its own slot.
	var g errgroup.Group
	g.Go(func() error { users, errUsers = b.Source.ListUsers(ctx); return nil })
	g.Go(func() error { rooms, errRooms = b.Source.ListRooms(ctx); return nil })
	g.Go(func() error { bookings, errBookings = b.Source.ListBookings(ctx); return nil })
	g.Go(func() error { locations, errLocs = b.Source.ListLocations(ctx); return nil })
	_ = g.Wait()

	res := Result{Failures: map[string]*FetchError{}}
	b.record(&res, DimUsers, errUsers)
	b.record(&res, DimRooms, errRooms)
	b.record(&res, DimBookings, errBookings)
	b.record(&res, DimLocations, errLocs)

	if errUsers != nil {
		users = nil
	}
	if errRooms != nil {
		rooms = nil
	}
	if errBookings != nil {
		bookings = nil
	}
	if errLocs != nil {
		locations = nil
	}

	res.Users = len(users)
	res.Rooms = aggregate.Count(rooms, BedroomLabel)
	res.Bookings = b.Normalizer.SortChronologically(aggregate.Count(bookings, CheckOutMonth))
	res.Locations = aggregate.Count(locations, ProvinceLabel)

	if b.Metrics != nil {
		b.Metrics.SeriesGroups(DimRooms, len(res.Rooms))
		b.Metrics.SeriesGroups(DimBookings, len(res.Bookings))
		b.Metrics.SeriesGroups(DimLocations, len(res.Locations))
	}
	return res
}

func (b *Builder) record(res *Result, dim string, err error) {
	if err == nil {
		return
	}
	fe := &FetchError{Dimension: dim, Err: err}
	res.Failures[dim] = fe
	if b.Log != nil {
		b.Log.Warn("dashboard fetch failed", zap.String("dimension", dim), zap.Error(err))
	}
	if b.Metrics != nil {
		b.Metrics.FetchFailed(dim)
	}
}
