package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/household-apps/todo-service/internal/models"
	"github.com/household-apps/todo-service/internal/utils"
)

const (
	testHousehold      = "household-alpha"
	testOtherHousehold = "household-beta"
	testUserID         = "user-alice"
)

// TaskRepositoryTestSuite defines the test suite for GormTaskRepository
type TaskRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo TaskRepository
}

// SetupTest runs before each test
func (suite *TaskRepositoryTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.Category{}, &models.Task{})
	suite.Require().NoError(err)

	suite.repo = NewTaskRepository(suite.db)
}

// TearDownTest runs after each test
func (suite *TaskRepositoryTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskRepositoryTestSuite) createTask(householdID, title string) *models.Task {
	task := &models.Task{
		HouseholdID:     householdID,
		Title:           title,
		CreatedByUserID: testUserID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *TaskRepositoryTestSuite) defaultPage() utils.PaginationParams {
	return utils.PaginationParams{Page: 0, Size: 20}
}

func titles(tasks []models.Task) []string {
	names := make([]string, len(tasks))
	for i, task := range tasks {
		names[i] = task.Title
	}
	return names
}

// TestList_FilterConjunction tests that every present filter must hold at
// once
func (suite *TaskRepositoryTestSuite) TestList_FilterConjunction() {
	categoryID := "category-kitchen"

	match := suite.createTask(testHousehold, "Matches all filters")
	match.Status = models.TaskStatusPending
	match.Priority = models.TaskPriorityHigh
	match.CategoryID = &categoryID
	suite.db.Save(match)

	wrongStatus := suite.createTask(testHousehold, "Wrong status")
	wrongStatus.Status = models.TaskStatusCompleted
	wrongStatus.Priority = models.TaskPriorityHigh
	wrongStatus.CategoryID = &categoryID
	suite.db.Save(wrongStatus)

	wrongPriority := suite.createTask(testHousehold, "Wrong priority")
	wrongPriority.Status = models.TaskStatusPending
	wrongPriority.Priority = models.TaskPriorityLow
	wrongPriority.CategoryID = &categoryID
	suite.db.Save(wrongPriority)

	noCategory := suite.createTask(testHousehold, "No category")
	noCategory.Status = models.TaskStatusPending
	noCategory.Priority = models.TaskPriorityHigh
	suite.db.Save(noCategory)

	status := models.TaskStatusPending
	priority := models.TaskPriorityHigh
	filter := TaskFilter{
		Status:     &status,
		Priority:   &priority,
		CategoryID: &categoryID,
	}

	tasks, total, err := suite.repo.List(testHousehold, filter, TaskSort{Field: SortFieldCreatedAt, Desc: true}, suite.defaultPage())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), total)
	if assert.Len(suite.T(), tasks, 1) {
		assert.Equal(suite.T(), "Matches all filters", tasks[0].Title)
	}
}

// TestList_DueDateBoundsInclusive tests that both window edges are part of
// the range
func (suite *TaskRepositoryTestSuite) TestList_DueDateBoundsInclusive() {
	from := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)

	set := func(title string, due time.Time) {
		task := suite.createTask(testHousehold, title)
		task.DueDate = &due
		suite.db.Save(task)
	}

	set("Before window", from.Add(-time.Hour))
	set("On lower edge", from)
	set("Inside window", from.Add(12*time.Hour))
	set("On upper edge", to)
	set("After window", to.Add(time.Hour))

	filter := TaskFilter{DueDateFrom: &from, DueDateTo: &to}

	tasks, total, err := suite.repo.List(testHousehold, filter, TaskSort{Field: SortFieldDueDate}, suite.defaultPage())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(3), total)
	assert.Equal(suite.T(), []string{"On lower edge", "Inside window", "On upper edge"}, titles(tasks))
}

// TestList_SortDueDateNullsLast tests that undated tasks sort last in both
// directions
func (suite *TaskRepositoryTestSuite) TestList_SortDueDateNullsLast() {
	early := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	late := time.Date(2025, 3, 20, 9, 0, 0, 0, time.UTC)

	suite.createTask(testHousehold, "Undated")

	earlyTask := suite.createTask(testHousehold, "Early")
	earlyTask.DueDate = &early
	suite.db.Save(earlyTask)

	lateTask := suite.createTask(testHousehold, "Late")
	lateTask.DueDate = &late
	suite.db.Save(lateTask)

	tasks, _, err := suite.repo.List(testHousehold, TaskFilter{}, TaskSort{Field: SortFieldDueDate}, suite.defaultPage())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"Early", "Late", "Undated"}, titles(tasks))

	tasks, _, err = suite.repo.List(testHousehold, TaskFilter{}, TaskSort{Field: SortFieldDueDate, Desc: true}, suite.defaultPage())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"Late", "Early", "Undated"}, titles(tasks))
}

// TestList_SortPriorityRank tests priority ordering by severity rank
func (suite *TaskRepositoryTestSuite) TestList_SortPriorityRank() {
	for _, p := range []models.TaskPriority{
		models.TaskPriorityUrgent,
		models.TaskPriorityLow,
		models.TaskPriorityHigh,
		models.TaskPriorityMedium,
	} {
		task := suite.createTask(testHousehold, string(p))
		task.Priority = p
		suite.db.Save(task)
	}

	tasks, _, err := suite.repo.List(testHousehold, TaskFilter{}, TaskSort{Field: SortFieldPriority}, suite.defaultPage())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"low", "medium", "high", "urgent"}, titles(tasks))
}

// TestList_InvalidSortField tests rejection of unknown sort fields
func (suite *TaskRepositoryTestSuite) TestList_InvalidSortField() {
	_, _, err := suite.repo.List(testHousehold, TaskFilter{}, TaskSort{Field: "bogus"}, suite.defaultPage())
	assert.Error(suite.T(), err)
	assert.True(suite.T(), errors.Is(err, ErrInvalidSortField))
}

// TestList_Pagination tests page slicing with a stable total
func (suite *TaskRepositoryTestSuite) TestList_Pagination() {
	for _, title := range []string{"A", "B", "C", "D", "E"} {
		suite.createTask(testHousehold, title)
	}

	sort := TaskSort{Field: SortFieldTitle}

	tasks, total, err := suite.repo.List(testHousehold, TaskFilter{}, sort, utils.PaginationParams{Page: 0, Size: 2})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(5), total)
	assert.Equal(suite.T(), []string{"A", "B"}, titles(tasks))

	tasks, total, err = suite.repo.List(testHousehold, TaskFilter{}, sort, utils.PaginationParams{Page: 1, Size: 2})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(5), total)
	assert.Equal(suite.T(), []string{"C", "D"}, titles(tasks))

	tasks, total, err = suite.repo.List(testHousehold, TaskFilter{}, sort, utils.PaginationParams{Page: 2, Size: 2})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(5), total)
	assert.Equal(suite.T(), []string{"E"}, titles(tasks))
}

// TestList_TieBreakByID tests the deterministic id tie-break for equal sort
// keys
func (suite *TaskRepositoryTestSuite) TestList_TieBreakByID() {
	first := suite.createTask(testHousehold, "First")
	second := suite.createTask(testHousehold, "Second")

	ts := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	err := suite.db.Model(&models.Task{}).
		Where("id IN ?", []string{first.ID, second.ID}).
		Update("created_at", ts).Error
	suite.Require().NoError(err)

	tasks, _, err := suite.repo.List(testHousehold, TaskFilter{}, TaskSort{Field: SortFieldCreatedAt, Desc: true}, suite.defaultPage())
	assert.NoError(suite.T(), err)
	if assert.Len(suite.T(), tasks, 2) {
		assert.Less(suite.T(), tasks[0].ID, tasks[1].ID)
	}
}

// TestList_ExcludesOtherHouseholds tests tenant scoping
func (suite *TaskRepositoryTestSuite) TestList_ExcludesOtherHouseholds() {
	suite.createTask(testHousehold, "Mine")
	suite.createTask(testOtherHousehold, "Theirs")

	tasks, total, err := suite.repo.List(testHousehold, TaskFilter{}, TaskSort{Field: SortFieldCreatedAt, Desc: true}, suite.defaultPage())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), total)
	assert.Equal(suite.T(), []string{"Mine"}, titles(tasks))
}

// TestList_UnknownHousehold tests that an unknown tenant yields an empty
// result, not an error
func (suite *TaskRepositoryTestSuite) TestList_UnknownHousehold() {
	suite.createTask(testHousehold, "Mine")

	tasks, total, err := suite.repo.List("household-nobody", TaskFilter{}, TaskSort{Field: SortFieldCreatedAt, Desc: true}, suite.defaultPage())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(0), total)
	assert.Empty(suite.T(), tasks)
}

// TestFindByID_SoftDeleted tests that soft-deleted rows read as not found
func (suite *TaskRepositoryTestSuite) TestFindByID_SoftDeleted() {
	task := suite.createTask(testHousehold, "Gone")
	now := time.Now()
	task.IsDeleted = true
	task.DeletedAt = &now
	suite.db.Save(task)

	_, err := suite.repo.FindByID(testHousehold, task.ID)
	assert.True(suite.T(), errors.Is(err, gorm.ErrRecordNotFound))
}

// TestSearch_CaseInsensitive tests matching over title and description
func (suite *TaskRepositoryTestSuite) TestSearch_CaseInsensitive() {
	suite.createTask(testHousehold, "Buy GROCERIES")

	inDescription := suite.createTask(testHousehold, "Errands")
	inDescription.Description = "pick up Groceries after work"
	suite.db.Save(inDescription)

	suite.createTask(testHousehold, "Walk the dog")

	deleted := suite.createTask(testHousehold, "groceries old")
	now := time.Now()
	deleted.IsDeleted = true
	deleted.DeletedAt = &now
	suite.db.Save(deleted)

	suite.createTask(testOtherHousehold, "groceries elsewhere")

	tasks, total, err := suite.repo.Search(testHousehold, "groceries", suite.defaultPage())
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), total)
	assert.Len(suite.T(), tasks, 2)
}

// TestListOverdue_Predicate tests the overdue boundary conditions
func (suite *TaskRepositoryTestSuite) TestListOverdue_Predicate() {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	due := suite.createTask(testHousehold, "Past due pending")
	due.DueDate = &past
	suite.db.Save(due)

	inProgress := suite.createTask(testHousehold, "Past due in progress")
	inProgress.Status = models.TaskStatusInProgress
	inProgress.DueDate = &past
	suite.db.Save(inProgress)

	notYet := suite.createTask(testHousehold, "Due later")
	notYet.DueDate = &future
	suite.db.Save(notYet)

	done := suite.createTask(testHousehold, "Past due completed")
	done.Status = models.TaskStatusCompleted
	done.DueDate = &past
	suite.db.Save(done)

	cancelled := suite.createTask(testHousehold, "Past due cancelled")
	cancelled.Status = models.TaskStatusCancelled
	cancelled.DueDate = &past
	suite.db.Save(cancelled)

	suite.createTask(testHousehold, "No due date")

	tasks, err := suite.repo.ListOverdue(testHousehold, now)
	assert.NoError(suite.T(), err)
	assert.ElementsMatch(suite.T(), []string{"Past due pending", "Past due in progress"}, titles(tasks))
}

// TestCountOverdue_MatchesList tests that the count and the list share one
// predicate
func (suite *TaskRepositoryTestSuite) TestCountOverdue_MatchesList() {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	for i, due := range []time.Time{past, past.Add(time.Minute), future} {
		task := suite.createTask(testHousehold, string(rune('A'+i)))
		task.DueDate = &due
		suite.db.Save(task)
	}

	tasks, err := suite.repo.ListOverdue(testHousehold, now)
	assert.NoError(suite.T(), err)

	count, err := suite.repo.CountOverdue(testHousehold, now)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(len(tasks)), count)
	assert.Equal(suite.T(), int64(2), count)
}

// TestListDueBetween_Window tests the inclusive reminder window
func (suite *TaskRepositoryTestSuite) TestListDueBetween_Window() {
	from := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	set := func(title string, due time.Time, status models.TaskStatus) {
		task := suite.createTask(testHousehold, title)
		task.DueDate = &due
		task.Status = status
		suite.db.Save(task)
	}

	set("At window start", from, models.TaskStatusPending)
	set("Mid window", from.Add(6*time.Hour), models.TaskStatusInProgress)
	set("At window end", to, models.TaskStatusPending)
	set("Past window", to.Add(time.Minute), models.TaskStatusPending)
	set("Done mid window", from.Add(3*time.Hour), models.TaskStatusCompleted)

	tasks, err := suite.repo.ListDueBetween(testHousehold, from, to)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"At window start", "Mid window", "At window end"}, titles(tasks))
}

// TestCount_ExcludesSoftDeleted tests the live count
func (suite *TaskRepositoryTestSuite) TestCount_ExcludesSoftDeleted() {
	suite.createTask(testHousehold, "Alive")
	deleted := suite.createTask(testHousehold, "Dead")
	now := time.Now()
	deleted.IsDeleted = true
	deleted.DeletedAt = &now
	suite.db.Save(deleted)

	count, err := suite.repo.Count(testHousehold)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), count)
}

// TestCountByCategory_IncludesSoftDeleted tests that category references
// survive soft deletion
func (suite *TaskRepositoryTestSuite) TestCountByCategory_IncludesSoftDeleted() {
	categoryID := "category-kitchen"

	live := suite.createTask(testHousehold, "Live chore")
	live.CategoryID = &categoryID
	suite.db.Save(live)

	deleted := suite.createTask(testHousehold, "Deleted chore")
	deleted.CategoryID = &categoryID
	now := time.Now()
	deleted.IsDeleted = true
	deleted.DeletedAt = &now
	suite.db.Save(deleted)

	count, err := suite.repo.CountByCategory(testHousehold, categoryID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), count)
}

// TestHardDelete tests permanent removal and the not-found second attempt
func (suite *TaskRepositoryTestSuite) TestHardDelete() {
	task := suite.createTask(testHousehold, "Purge me")

	err := suite.repo.HardDelete(testHousehold, task.ID)
	assert.NoError(suite.T(), err)

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)

	err = suite.repo.HardDelete(testHousehold, task.ID)
	assert.True(suite.T(), errors.Is(err, gorm.ErrRecordNotFound))
}

// TestHardDelete_WrongHousehold tests that the household guard holds for
// permanent deletes
func (suite *TaskRepositoryTestSuite) TestHardDelete_WrongHousehold() {
	task := suite.createTask(testHousehold, "Keep me")

	err := suite.repo.HardDelete(testOtherHousehold, task.ID)
	assert.True(suite.T(), errors.Is(err, gorm.ErrRecordNotFound))

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

// TestSuite runs the test suite
func TestTaskRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryTestSuite))
}
