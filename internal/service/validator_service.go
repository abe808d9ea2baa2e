package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kittisak-dev/timetable-api/internal/dto"
	"github.com/kittisak-dev/timetable-api/internal/models"
	appErrors "github.com/kittisak-dev/timetable-api/pkg/errors"
)

type validationCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// ValidatorService audits the persisted timetables with an exhaustive
// pairwise scan. It reports conflicts, it never repairs them.
type ValidatorService struct {
	timetables timetableStore
	groups     classGroupReader
	rooms      roomReader
	cache      validationCache
	validator  *validator.Validate
	logger     *zap.Logger
	metrics    *MetricsService
	cacheTTL   time.Duration
}

// NewValidatorService wires validator dependencies. cache may be nil.
func NewValidatorService(
	timetables timetableStore,
	groups classGroupReader,
	rooms roomReader,
	cache validationCache,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cacheTTL time.Duration,
) *ValidatorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValidatorService{
		timetables: timetables,
		groups:     groups,
		rooms:      rooms,
		cache:      cache,
		validator:  validate,
		logger:     logger,
		metrics:    metrics,
		cacheTTL:   cacheTTL,
	}
}

// Validate scans the requested view of the timetables for conflicts.
// departmentId and group narrow which assignments are inspected; type
// narrows which conflicts are listed but the summary always covers every
// conflict found in the inspected view.
func (s *ValidatorService) Validate(ctx context.Context, query dto.ValidateQuery) (*dto.ValidateResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation query")
	}

	cacheKey := fmt.Sprintf("validate:%s:%s:%s", query.DepartmentID, query.Group, query.Type)
	if s.cache != nil {
		var cached dto.ValidateResponse
		err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("validation cache read failed", zap.Error(err))
		}
	}

	tables, err := s.timetables.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetables")
	}

	groupInfo, err := s.groupIndex(ctx)
	if err != nil {
		return nil, err
	}
	roomCaps, err := s.roomCapacities(ctx)
	if err != nil {
		return nil, err
	}

	view := s.selectView(tables, groupInfo, query)
	conflicts := s.scan(view, groupInfo, roomCaps)

	summary := models.ValidationSummary{
		Assignments: len(view),
		Total:       len(conflicts),
		ByType:      map[models.ConflictType]int{},
	}
	for _, c := range conflicts {
		summary.ByType[c.Type]++
	}
	s.metrics.SetConflicts(summary.ByType)

	listed := conflicts
	if query.Type != "" && query.Type != "ALL" {
		listed = make([]models.Conflict, 0)
		for _, c := range conflicts {
			if string(c.Type) == query.Type {
				listed = append(listed, c)
			}
		}
	}

	resp := &dto.ValidateResponse{Conflicts: listed, Summary: summary}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, s.cacheTTL); err != nil {
			s.logger.Warn("validation cache write failed", zap.Error(err))
		}
	}
	return resp, nil
}

// selectView flattens the timetables into the slice of assignments the
// query asks about, in deterministic group/day/slot order.
func (s *ValidatorService) selectView(tables models.Timetables, groupInfo map[string]models.ClassGroup, query dto.ValidateQuery) []models.Assignment {
	names := make([]string, 0, len(tables))
	for name := range tables {
		if query.Group != "" && name != query.Group {
			continue
		}
		if query.DepartmentID != "" {
			info, known := groupInfo[name]
			if !known || info.DepartmentID != query.DepartmentID {
				continue
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var view []models.Assignment
	for _, name := range names {
		assignments := tables[name]
		sort.SliceStable(assignments, func(i, j int) bool {
			if assignments[i].Day != assignments[j].Day {
				return assignments[i].Day < assignments[j].Day
			}
			return assignments[i].Slot < assignments[j].Slot
		})
		view = append(view, assignments...)
	}
	return view
}

// scan performs the exhaustive pairwise check plus the per-assignment
// capacity check. Each unordered pair is inspected once and can contribute
// one conflict per dimension.
func (s *ValidatorService) scan(view []models.Assignment, groupInfo map[string]models.ClassGroup, roomCaps map[string]int) []models.Conflict {
	var conflicts []models.Conflict

	for i := 0; i < len(view); i++ {
		a := view[i]
		for j := i + 1; j < len(view); j++ {
			b := view[j]
			if !a.OverlapsWith(b) {
				continue
			}
			if a.RoomID != "" && a.RoomID == b.RoomID {
				conflicts = append(conflicts, models.Conflict{Type: models.ConflictRoom, First: a, Second: &view[j]})
			}
			if a.TeacherID != "" && a.TeacherID == b.TeacherID {
				conflicts = append(conflicts, models.Conflict{Type: models.ConflictTeacher, First: a, Second: &view[j]})
			}
			if a.ClassGroup == b.ClassGroup {
				conflicts = append(conflicts, models.Conflict{Type: models.ConflictClass, First: a, Second: &view[j]})
			}
		}

		info, known := groupInfo[a.ClassGroup]
		if !known || info.StudentCount <= 0 {
			continue
		}
		capacity, known := roomCaps[a.RoomID]
		if !known || capacity <= 0 {
			continue
		}
		if info.StudentCount > capacity {
			conflicts = append(conflicts, models.Conflict{
				Type:      models.ConflictCapacity,
				First:     a,
				GroupSize: info.StudentCount,
				Capacity:  capacity,
			})
		}
	}

	return conflicts
}

func (s *ValidatorService) groupIndex(ctx context.Context) (map[string]models.ClassGroup, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class groups")
	}
	index := make(map[string]models.ClassGroup, len(groups))
	for _, g := range groups {
		index[g.Name] = g
	}
	return index, nil
}

func (s *ValidatorService) roomCapacities(ctx context.Context) (map[string]int, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	caps := make(map[string]int, len(rooms))
	for _, r := range rooms {
		caps[r.ID] = r.Capacity
	}
	return caps, nil
}
