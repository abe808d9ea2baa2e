package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kittisak-dev/timetable-api/internal/dto"
	"github.com/kittisak-dev/timetable-api/internal/models"
	appErrors "github.com/kittisak-dev/timetable-api/pkg/errors"
)

type departmentReader interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id string) (*models.Department, error)
}

type classGroupReader interface {
	List(ctx context.Context) ([]models.ClassGroup, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]models.ClassGroup, error)
	FindByName(ctx context.Context, name string) (*models.ClassGroup, error)
}

type roomReader interface {
	List(ctx context.Context) ([]models.Room, error)
}

type teacherReader interface {
	List(ctx context.Context) ([]models.Teacher, error)
}

type subjectReader interface {
	List(ctx context.Context) ([]models.Subject, error)
}

type settingsReader interface {
	Get(ctx context.Context) (models.Settings, error)
}

type timetableStore interface {
	ListAll(ctx context.Context) (models.Timetables, error)
	ListByGroup(ctx context.Context, group string) ([]models.Assignment, error)
	ReplaceGroup(ctx context.Context, group string, assignments []models.Assignment) error
	DeleteAll(ctx context.Context) error
}

type validationCacheInvalidator interface {
	DeleteByPattern(ctx context.Context, pattern string) error
}

// GeneratorService rebuilds class-group timetables with the randomized
// placement heuristic. Runs are serialized: each group's output becomes a
// hard constraint for everything scheduled after it.
type GeneratorService struct {
	departments departmentReader
	groups      classGroupReader
	rooms       roomReader
	teachers    teacherReader
	subjects    subjectReader
	settings    settingsReader
	timetables  timetableStore
	cache       validationCacheInvalidator
	validator   *validator.Validate
	logger      *zap.Logger
	metrics     *MetricsService

	runMu sync.Mutex
	rng   *rand.Rand
}

// GeneratorServiceConfig governs generator behaviour.
type GeneratorServiceConfig struct {
	// Seed makes runs reproducible when non-zero.
	Seed int64
}

// NewGeneratorService wires generator dependencies.
func NewGeneratorService(
	departments departmentReader,
	groups classGroupReader,
	rooms roomReader,
	teachers teacherReader,
	subjects subjectReader,
	settings settingsReader,
	timetables timetableStore,
	cache validationCacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics *MetricsService,
	cfg GeneratorServiceConfig,
) *GeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &GeneratorService{
		departments: departments,
		groups:      groups,
		rooms:       rooms,
		teachers:    teachers,
		subjects:    subjects,
		settings:    settings,
		timetables:  timetables,
		cache:       cache,
		validator:   validate,
		logger:      logger,
		metrics:     metrics,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// GenerateForGroup rebuilds one class group's schedule. Every other group's
// persisted assignments are locked; the target group's old schedule is
// discarded before placement starts.
func (s *GeneratorService) GenerateForGroup(ctx context.Context, req dto.GenerateGroupRequest) (*dto.GenerateGroupResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	dept, err := s.resolveDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}
	group, err := s.groups.FindByName(ctx, req.Group)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidScope, "class group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class group")
	}
	if group.DepartmentID != dept.ID {
		return nil, appErrors.Clone(appErrors.ErrInvalidScope, "class group does not belong to the selected department")
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	started := time.Now()
	run, log, err := s.prepareRun(ctx)
	if err != nil {
		return nil, err
	}

	tables, err := s.timetables.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetables")
	}
	for name, assignments := range tables {
		if name == group.Name {
			continue
		}
		run.locked = append(run.locked, assignments...)
	}

	log.Infof("generating timetable for group %s (department %s, %d students)", group.Name, dept.Name, group.StudentCount)

	result := s.generateGroup(run, *group)
	if err := s.persistGroup(ctx, result); err != nil {
		return nil, err
	}

	s.metrics.ObserveRun("group", time.Since(started))
	log.Infof("finished timetable for group %s: %d sessions placed, %d unplaced (%.2fs)",
		group.Name, len(result.Assignments), len(result.Unplaced), time.Since(started).Seconds())

	return &dto.GenerateGroupResponse{Result: result, Log: log.Lines()}, nil
}

// GenerateForDepartment rebuilds every class group of one department in
// record order. Other departments' persisted schedules are locked; each
// finished group becomes locked for the groups after it.
func (s *GeneratorService) GenerateForDepartment(ctx context.Context, req dto.GenerateDepartmentRequest) (*dto.GenerateRunResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generate payload")
	}

	dept, err := s.resolveDepartment(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	s.runMu.Lock()
	defer s.runMu.Unlock()

	started := time.Now()
	run, log, err := s.prepareRun(ctx)
	if err != nil {
		return nil, err
	}
	run.multiScope = true

	allGroups, err := s.groups.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class groups")
	}
	groupDept := make(map[string]string, len(allGroups))
	for _, g := range allGroups {
		groupDept[g.Name] = g.DepartmentID
	}

	tables, err := s.timetables.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetables")
	}
	for name, assignments := range tables {
		deptID, known := groupDept[name]
		if !known || deptID == dept.ID {
			continue
		}
		run.locked = append(run.locked, assignments...)
	}

	targets, err := s.groups.ListByDepartment(ctx, dept.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class groups")
	}

	log.Infof("generating timetables for department %s (%d groups)", dept.Name, len(targets))

	results, err := s.generateSequence(ctx, run, log, dept.Name, targets)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveRun("department", time.Since(started))
	log.Infof("finished department %s: %d groups (%.2fs)", dept.Name, len(results), time.Since(started).Seconds())

	return &dto.GenerateRunResponse{Results: results, Log: log.Lines()}, nil
}

// GenerateForInstitution discards the whole institutional schedule and
// rebuilds every class group in record order from an empty locked set.
func (s *GeneratorService) GenerateForInstitution(ctx context.Context) (*dto.GenerateRunResponse, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	started := time.Now()
	run, log, err := s.prepareRun(ctx)
	if err != nil {
		return nil, err
	}
	run.multiScope = true

	if err := s.timetables.DeleteAll(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear timetables")
	}

	allGroups, err := s.groups.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class groups")
	}
	deptNames, err := s.departmentNames(ctx)
	if err != nil {
		return nil, err
	}

	log.Infof("generating timetables for the whole institution (%d groups)", len(allGroups))

	results := make([]dto.GroupResult, 0, len(allGroups))
	for _, group := range allGroups {
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation aborted")
		}

		deptName := deptNames[group.DepartmentID]
		if deptName == "" {
			deptName = group.DepartmentID
		}
		log.Infof("generating timetable for group %s (department %s, %d students)", group.Name, deptName, group.StudentCount)

		result := s.generateGroup(run, group)
		if err := s.persistGroup(ctx, result); err != nil {
			return nil, err
		}
		run.locked = append(run.locked, result.Assignments...)
		results = append(results, result)

		log.Infof("finished timetable for group %s: %d sessions placed, %d unplaced", group.Name, len(result.Assignments), len(result.Unplaced))
	}

	s.metrics.ObserveRun("institution", time.Since(started))
	log.Infof("finished institution-wide generation: %d groups (%.2fs)", len(results), time.Since(started).Seconds())

	return &dto.GenerateRunResponse{Results: results, Log: log.Lines()}, nil
}

// ListTimetables returns the persisted timetables, optionally narrowed to
// one class group.
func (s *GeneratorService) ListTimetables(ctx context.Context, group string) (models.Timetables, error) {
	if group != "" {
		assignments, err := s.timetables.ListByGroup(ctx, group)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable for group "+group)
		}
		narrowed := models.Timetables{}
		if len(assignments) > 0 {
			narrowed[group] = assignments
		}
		return narrowed, nil
	}

	tables, err := s.timetables.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetables")
	}
	return tables, nil
}

// ClearAll wipes every class group's schedule.
func (s *GeneratorService) ClearAll(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := s.timetables.DeleteAll(ctx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear timetables")
	}
	s.invalidateValidationCache(ctx)
	return nil
}

// generateSequence processes groups in order, folding each group's output
// into the locked set before the next group starts. Persistence happens per
// group so partial progress survives interruption.
func (s *GeneratorService) generateSequence(ctx context.Context, run *generationRun, log *runLog, deptName string, groups []models.ClassGroup) ([]dto.GroupResult, error) {
	results := make([]dto.GroupResult, 0, len(groups))
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "generation aborted")
		}

		log.Infof("generating timetable for group %s (department %s, %d students)", group.Name, deptName, group.StudentCount)

		result := s.generateGroup(run, group)
		if err := s.persistGroup(ctx, result); err != nil {
			return nil, err
		}
		run.locked = append(run.locked, result.Assignments...)
		results = append(results, result)

		log.Infof("finished timetable for group %s: %d sessions placed, %d unplaced", group.Name, len(result.Assignments), len(result.Unplaced))
	}
	return results, nil
}

// generateGroup places every session unit of one class group. multiScope
// runs (department, institution) degrade gracefully when no room fits the
// group size; the single-group run treats that as a hard skip.
func (s *GeneratorService) generateGroup(run *generationRun, group models.ClassGroup) dto.GroupResult {
	multiScope := run.multiScope
	units := run.orderSessions(run.expandSessions(group.DepartmentID), group.StudentCount)

	working := make([]models.Assignment, 0, len(units))
	var unplaced []dto.UnplacedSession

	skip := func(unit sessionUnit, reason string) {
		unplaced = append(unplaced, dto.UnplacedSession{
			SubjectID:   unit.subject.ID,
			SubjectName: unit.subject.Name,
			Duration:    unit.duration,
			Reason:      reason,
		})
		s.metrics.RecordUnplaced(reason)
	}

	for _, unit := range units {
		baseRooms := run.matchRooms(unit.subject)
		if len(baseRooms) == 0 {
			run.log.Warnf("group %s: no eligible room (tag/type) for subject %s", group.Name, unit.subject.Name)
			skip(unit, reasonNoEligibleRoom)
			continue
		}

		rooms := baseRooms
		if group.StudentCount > 0 {
			var fitting []models.Room
			for _, room := range baseRooms {
				if room.Fits(group.StudentCount) {
					fitting = append(fitting, room)
				}
			}
			switch {
			case len(fitting) > 0:
				rooms = fitting
			case multiScope:
				run.log.Warnf("group %s: no room fits %d students for subject %s, using closest available", group.Name, group.StudentCount, unit.subject.Name)
			default:
				run.log.Warnf("group %s: no room fits %d students for subject %s", group.Name, group.StudentCount, unit.subject.Name)
				skip(unit, reasonNoCapacityRoom)
				continue
			}
		}

		teachers := run.matchTeachers(unit.subject)
		if len(teachers) == 0 {
			run.log.Warnf("group %s: subject %s has no eligible teacher", group.Name, unit.subject.Name)
			skip(unit, reasonNoEligibleTeacher)
			continue
		}

		assignment, reason := run.placeSession(group.Name, rooms, teachers, unit, working)
		if assignment == nil {
			run.log.Warnf("group %s: could not place subject %s within the attempt budget", group.Name, unit.subject.Name)
			skip(unit, reason)
			continue
		}

		working = append(working, *assignment)
		s.metrics.RecordPlacement()
	}

	return dto.GroupResult{Group: group.Name, Assignments: working, Unplaced: unplaced}
}

func (s *GeneratorService) persistGroup(ctx context.Context, result dto.GroupResult) error {
	if err := s.timetables.ReplaceGroup(ctx, result.Group, result.Assignments); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timetable for group "+result.Group)
	}
	s.invalidateValidationCache(ctx)
	return nil
}

func (s *GeneratorService) invalidateValidationCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "validate:*"); err != nil {
		s.logger.Warn("failed to invalidate validation cache", zap.Error(err))
	}
}

// prepareRun loads settings and entities shared by every scope.
func (s *GeneratorService) prepareRun(ctx context.Context) (*generationRun, *runLog, error) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	settings.Normalize()

	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}

	log := newRunLog(s.logger)
	run := &generationRun{
		settings: settings,
		rooms:    rooms,
		teachers: teachers,
		subjects: subjects,
		rng:      s.rng,
		log:      log,
	}
	return run, log, nil
}

func (s *GeneratorService) resolveDepartment(ctx context.Context, id string) (*models.Department, error) {
	dept, err := s.departments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidScope, "department not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load department")
	}
	return dept, nil
}

func (s *GeneratorService) departmentNames(ctx context.Context) (map[string]string, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load departments")
	}
	names := make(map[string]string, len(departments))
	for _, d := range departments {
		names[d.ID] = d.Name
	}
	return names, nil
}
