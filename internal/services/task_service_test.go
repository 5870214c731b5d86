package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/household-apps/todo-service/internal/cache"
	"github.com/household-apps/todo-service/internal/constants"
	apperrors "github.com/household-apps/todo-service/internal/errors"
	"github.com/household-apps/todo-service/internal/models"
	"github.com/household-apps/todo-service/internal/repository"
	"github.com/household-apps/todo-service/internal/utils"
)

const (
	testHousehold      = "household-alpha"
	testOtherHousehold = "household-beta"
	testUserID         = "user-alice"
)

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	store   cache.Store
	service *TaskService
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.Category{}, &models.Task{})
	suite.Require().NoError(err)

	suite.store = cache.NewMemory(time.Minute)
	suite.service = NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewCategoryRepository(suite.db),
		suite.store,
		nil,
	)
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskServiceTestSuite) createTask(title string) *models.Task {
	task := &models.Task{
		HouseholdID:     testHousehold,
		Title:           title,
		CreatedByUserID: testUserID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

// TestListTasks_ClampOversizedPage tests capping against a set larger than
// the cap
func (suite *TaskServiceTestSuite) TestListTasks_ClampOversizedPage() {
	for i := 0; i < 105; i++ {
		suite.createTask(fmt.Sprintf("Task %03d", i))
	}

	page, err := suite.service.ListTasks(testHousehold, ListTasksInput{
		Page: utils.PaginationParams{Page: 0, Size: 500},
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), constants.MaxPageSize, page.Page.Size)
	assert.Len(suite.T(), page.Tasks, constants.MaxPageSize)
	assert.Equal(suite.T(), int64(105), page.Total)
}

// TestListTasks_DefaultPageSize tests the default window
func (suite *TaskServiceTestSuite) TestListTasks_DefaultPageSize() {
	for i := 0; i < 25; i++ {
		suite.createTask(fmt.Sprintf("Task %02d", i))
	}

	page, err := suite.service.ListTasks(testHousehold, ListTasksInput{})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), constants.DefaultPageSize, page.Page.Size)
	assert.Len(suite.T(), page.Tasks, constants.DefaultPageSize)
	assert.Equal(suite.T(), int64(25), page.Total)
}

// TestListTasks_InvalidSortOrder tests rejection of unknown sort directions
func (suite *TaskServiceTestSuite) TestListTasks_InvalidSortOrder() {
	_, err := suite.service.ListTasks(testHousehold, ListTasksInput{
		SortBy:    "title",
		SortOrder: "sideways",
	})
	assert.True(suite.T(), apperrors.IsInvalidArgument(err))
}

// TestListTasks_NegativeSize tests rejection of a negative page size
func (suite *TaskServiceTestSuite) TestListTasks_NegativeSize() {
	_, err := suite.service.ListTasks(testHousehold, ListTasksInput{
		Page: utils.PaginationParams{Page: 0, Size: -5},
	})
	assert.True(suite.T(), apperrors.IsInvalidArgument(err))
}

// TestSearchTasks_WhitespaceRejected tests that blank search text never
// reaches the store
func (suite *TaskServiceTestSuite) TestSearchTasks_WhitespaceRejected() {
	_, err := suite.service.SearchTasks(testHousehold, "   ", utils.PaginationParams{})
	assert.True(suite.T(), apperrors.IsInvalidArgument(err))
}

// TestListTasksByUser_EmptyUserID tests rejection of a missing user id
func (suite *TaskServiceTestSuite) TestListTasksByUser_EmptyUserID() {
	_, err := suite.service.ListTasksByUser(testHousehold, "", utils.PaginationParams{})
	assert.True(suite.T(), apperrors.IsInvalidArgument(err))
}

// TestGetTask_ServedFromCache tests that a repeat lookup is answered from
// the cache
func (suite *TaskServiceTestSuite) TestGetTask_ServedFromCache() {
	task := suite.createTask("Cached chore")

	first, err := suite.service.GetTask(testHousehold, task.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Cached chore", first.Title)

	// Remove the row behind the service's back; the cached copy still
	// answers until something invalidates it
	suite.Require().NoError(suite.db.Delete(&models.Task{}, "id = ?", task.ID).Error)

	second, err := suite.service.GetTask(testHousehold, task.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Cached chore", second.Title)
}

// TestGetTask_ReturnsCopy tests that callers cannot mutate the cached entry
func (suite *TaskServiceTestSuite) TestGetTask_ReturnsCopy() {
	task := suite.createTask("Original title")

	first, err := suite.service.GetTask(testHousehold, task.ID)
	assert.NoError(suite.T(), err)
	first.Title = "Mutated title"

	second, err := suite.service.GetTask(testHousehold, task.ID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Original title", second.Title)
}

// TestGetTask_NoopStoreAlwaysLive tests that the no-op store keeps every
// read live
func (suite *TaskServiceTestSuite) TestGetTask_NoopStoreAlwaysLive() {
	service := NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewCategoryRepository(suite.db),
		cache.Noop{},
		nil,
	)

	task := suite.createTask("Live chore")

	_, err := service.GetTask(testHousehold, task.ID)
	assert.NoError(suite.T(), err)

	suite.Require().NoError(suite.db.Delete(&models.Task{}, "id = ?", task.ID).Error)

	_, err = service.GetTask(testHousehold, task.ID)
	assert.True(suite.T(), apperrors.IsNotFound(err))
}

// TestCreateTask_TitleLength tests the rune-counted title limit
func (suite *TaskServiceTestSuite) TestCreateTask_TitleLength() {
	longTitle := strings.Repeat("ä", constants.MaxTitleLength+1)
	_, err := suite.service.CreateTask(testHousehold, CreateTaskInput{
		Title:           longTitle,
		CreatedByUserID: testUserID,
	})
	assert.True(suite.T(), apperrors.IsInvalidArgument(err))

	okTitle := strings.Repeat("ä", constants.MaxTitleLength)
	task, err := suite.service.CreateTask(testHousehold, CreateTaskInput{
		Title:           okTitle,
		CreatedByUserID: testUserID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), okTitle, task.Title)
}

// TestCreateTask_NonPositiveDuration tests the duration guard
func (suite *TaskServiceTestSuite) TestCreateTask_NonPositiveDuration() {
	zero := 0
	_, err := suite.service.CreateTask(testHousehold, CreateTaskInput{
		Title:                    "Quick chore",
		EstimatedDurationMinutes: &zero,
		CreatedByUserID:          testUserID,
	})
	assert.True(suite.T(), apperrors.IsInvalidArgument(err))
}

// TestCreateTask_MissingCreator tests that the creating user is required
func (suite *TaskServiceTestSuite) TestCreateTask_MissingCreator() {
	_, err := suite.service.CreateTask(testHousehold, CreateTaskInput{
		Title: "Orphan chore",
	})
	assert.True(suite.T(), apperrors.IsInvalidArgument(err))
}

// TestUpdateTask_ClearFlags tests explicit clearing of optional fields
func (suite *TaskServiceTestSuite) TestUpdateTask_ClearFlags() {
	category := &models.Category{
		HouseholdID: testHousehold,
		Name:        "Kitchen",
		IsActive:    true,
	}
	suite.Require().NoError(suite.db.Create(category).Error)

	due := time.Now().Add(24 * time.Hour)
	duration := 30
	assignee := "user-bob"
	task := suite.createTask("Fully loaded")
	task.CategoryID = &category.ID
	task.DueDate = &due
	task.EstimatedDurationMinutes = &duration
	task.AssignedUserID = &assignee
	suite.Require().NoError(suite.db.Save(task).Error)

	updated, err := suite.service.UpdateTask(testHousehold, task.ID, testUserID, UpdateTaskInput{
		ClearCategoryID:        true,
		ClearDueDate:           true,
		ClearEstimatedDuration: true,
		ClearAssignedUserID:    true,
	})
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), updated.CategoryID)
	assert.Nil(suite.T(), updated.DueDate)
	assert.Nil(suite.T(), updated.EstimatedDurationMinutes)
	assert.Nil(suite.T(), updated.AssignedUserID)
}

// TestUpdateTask_CategoryFromOtherHousehold tests the category ownership
// check on update
func (suite *TaskServiceTestSuite) TestUpdateTask_CategoryFromOtherHousehold() {
	foreign := &models.Category{
		HouseholdID: testOtherHousehold,
		Name:        "Beta Kitchen",
		IsActive:    true,
	}
	suite.Require().NoError(suite.db.Create(foreign).Error)

	task := suite.createTask("Chore")

	_, err := suite.service.UpdateTask(testHousehold, task.ID, testUserID, UpdateTaskInput{
		CategoryID: &foreign.ID,
	})
	assert.True(suite.T(), apperrors.IsNotFound(err))
}

// TestCreateTask_InactiveCategory tests that a deactivated category reads as
// absent on assignment
func (suite *TaskServiceTestSuite) TestCreateTask_InactiveCategory() {
	category := &models.Category{
		HouseholdID: testHousehold,
		Name:        "Old Room",
		IsActive:    false,
	}
	suite.Require().NoError(suite.db.Create(category).Error)

	_, err := suite.service.CreateTask(testHousehold, CreateTaskInput{
		Title:           "Chore",
		CategoryID:      &category.ID,
		CreatedByUserID: testUserID,
	})
	assert.True(suite.T(), apperrors.IsNotFound(err))
}

// TestAssignTask_EmptyUserID tests rejection of an empty assignee id
func (suite *TaskServiceTestSuite) TestAssignTask_EmptyUserID() {
	task := suite.createTask("Chore")

	empty := ""
	_, err := suite.service.AssignTask(testHousehold, task.ID, &empty)
	assert.True(suite.T(), apperrors.IsInvalidArgument(err))
}

// TestSuggestTasks_NotConfigured tests the sentinel for a missing AI client
func (suite *TaskServiceTestSuite) TestSuggestTasks_NotConfigured() {
	_, err := suite.service.SuggestTasks(context.Background(), "buy milk")
	assert.True(suite.T(), errors.Is(err, ErrAIServiceNotConfigured))
}

// TestSuggestTasks_EmptyText tests rejection of blank input before any API
// call
func (suite *TaskServiceTestSuite) TestSuggestTasks_EmptyText() {
	service := NewTaskService(
		repository.NewTaskRepository(suite.db),
		repository.NewCategoryRepository(suite.db),
		cache.Noop{},
		NewAIService("test-key"),
	)

	_, err := service.SuggestTasks(context.Background(), "   ")
	assert.True(suite.T(), apperrors.IsInvalidArgument(err))
}

// TestSuite runs the test suite
func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

// newMockedService builds a TaskService over a sqlmock-backed connection for
// driving store failures.
func newMockedService(t *testing.T) (*TaskService, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	service := NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewCategoryRepository(db),
		cache.Noop{},
		nil,
	)
	return service, mock
}

// TestListTasks_StoreUnavailable tests classification of a failing count
// query
func TestListTasks_StoreUnavailable(t *testing.T) {
	service, mock := newMockedService(t)

	mock.ExpectQuery("SELECT count").WillReturnError(errors.New("connection refused"))

	_, err := service.ListTasks(testHousehold, ListTasksInput{})
	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestGetTask_StoreUnavailable tests that a store failure is not reported as
// not found
func TestGetTask_StoreUnavailable(t *testing.T) {
	service, mock := newMockedService(t)

	mock.ExpectQuery("SELECT").WillReturnError(errors.New("connection refused"))

	_, err := service.GetTask(testHousehold, "task-1")
	assert.True(t, apperrors.IsStoreUnavailable(err))
	assert.False(t, apperrors.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
