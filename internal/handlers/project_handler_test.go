package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/kwatanabe/portfolio-api/internal/database"
	"github.com/kwatanabe/portfolio-api/internal/dto"
	"github.com/kwatanabe/portfolio-api/internal/models"
	"github.com/kwatanabe/portfolio-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ProjectHandlerTestSuite defines the test suite for the project and
// portfolio endpoints
type ProjectHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *ProjectHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Person{},
		&models.Project{},
		&models.Task{},
		&models.Subtask{},
		&models.Activity{},
		&models.MigrationMarker{},
	)
	suite.Require().NoError(err)
	suite.Require().NoError(database.RunDataMigrations(suite.db))

	projects := services.NewProjectService(suite.db)
	projectHandler := NewProjectHandler(projects)
	portfolioHandler := NewPortfolioHandler(projects)

	suite.router = gin.New()
	suite.router.GET("/api/projects", projectHandler.ListProjects)
	suite.router.POST("/api/projects", projectHandler.CreateProject)
	suite.router.GET("/api/projects/:id", projectHandler.GetProject)
	suite.router.PUT("/api/projects/:id", projectHandler.UpdateProject)
	suite.router.DELETE("/api/projects/:id", projectHandler.DeleteProject)
	suite.router.GET("/api/export", portfolioHandler.Export)
	suite.router.POST("/api/import", portfolioHandler.Import)
}

// TearDownTest runs after each test
func (suite *ProjectHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProjectHandlerTestSuite) request(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *ProjectHandlerTestSuite) createProject(body string) dto.ProjectDTO {
	w := suite.request(http.MethodPost, "/api/projects", body)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var project dto.ProjectDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &project))
	return project
}

func (suite *ProjectHandlerTestSuite) TestCreateProjectAcceptsMixedStakeholderShapes() {
	project := suite.createProject(`{
		"name": "Website Redesign",
		"status": "in-progress",
		"stakeholders": [
			"Sarah Chen",
			{"name": "Marcus Rodriguez", "team": "Development", "email": "marcus@example.com"}
		]
	}`)

	suite.Equal("in-progress", project.Status)
	suite.Require().Len(project.Stakeholders, 2)
	names := []string{project.Stakeholders[0].Name, project.Stakeholders[1].Name}
	suite.Contains(names, "Sarah Chen")
	suite.Contains(names, "Marcus Rodriguez")
}

func (suite *ProjectHandlerTestSuite) TestCreateProjectRequiresName() {
	w := suite.request(http.MethodPost, "/api/projects", `{"status": "planning"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestCreateProjectConflict() {
	suite.createProject(`{"name": "Apollo"}`)
	w := suite.request(http.MethodPost, "/api/projects", `{"name": "APOLLO"}`)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestUpdateProjectIDMismatch() {
	project := suite.createProject(`{"name": "Apollo"}`)
	w := suite.request(http.MethodPut, "/api/projects/"+project.ID, `{"id": "project-other", "name": "Apollo"}`)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestUpdateProjectReplacesPlan() {
	project := suite.createProject(`{
		"name": "Apollo",
		"plan": [
			{"id": "task-1", "title": "Design"},
			{"id": "task-2", "title": "Build", "subtasks": [{"title": "API", "assignee": "Sarah Chen"}]}
		],
		"recentActivity": [
			{"date": "2025-01-01", "note": "Kickoff", "author": "Sarah Chen"},
			{"date": "2025-02-01", "note": "Design done", "author": "Sarah Chen"}
		]
	}`)

	suite.Require().NotNil(project.LastUpdate)
	suite.Equal("Design done", *project.LastUpdate)

	w := suite.request(http.MethodPut, "/api/projects/"+project.ID, `{
		"name": "Apollo",
		"plan": [{"id": "task-2", "title": "Build"}]
	}`)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var updated dto.ProjectDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Require().Len(updated.Plan, 1)
	suite.Equal("task-2", updated.Plan[0].ID)
	suite.Empty(updated.Plan[0].Subtasks)
	suite.Empty(updated.RecentActivity)
	suite.Nil(updated.LastUpdate)
}

func (suite *ProjectHandlerTestSuite) TestUpdateProjectCreatesUnderPathID() {
	w := suite.request(http.MethodPut, "/api/projects/project-imported", `{"name": "Apollo"}`)
	suite.Require().Equal(http.StatusOK, w.Code)

	var project dto.ProjectDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &project))
	suite.Equal("project-imported", project.ID)
}

func (suite *ProjectHandlerTestSuite) TestGetProjectNotFound() {
	w := suite.request(http.MethodGet, "/api/projects/project-missing", "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestDeleteProject() {
	project := suite.createProject(`{"name": "Apollo"}`)

	w := suite.request(http.MethodDelete, "/api/projects/"+project.ID, "")
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.request(http.MethodGet, "/api/projects/"+project.ID, "")
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ProjectHandlerTestSuite) TestExportSingleProject() {
	project := suite.createProject(`{"name": "Apollo"}`)
	suite.createProject(`{"name": "Hermes"}`)

	w := suite.request(http.MethodGet, "/api/export?project_id="+project.ID, "")
	suite.Require().Equal(http.StatusOK, w.Code)

	var export dto.ExportDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &export))
	suite.Equal(1, export.Version)
	suite.NotEmpty(export.ExportedAt)
	suite.Require().Len(export.Projects, 1)
	suite.Equal("Apollo", export.Projects[0].Name)
}

func (suite *ProjectHandlerTestSuite) TestExportImportRoundTrip() {
	suite.createProject(`{
		"name": "Apollo",
		"stakeholders": ["Sarah Chen"],
		"plan": [{"title": "Build", "assignee": "Sarah Chen"}],
		"recentActivity": [{"date": "2025-01-01", "note": "Kickoff", "author": "Sarah Chen"}]
	}`)

	export := suite.request(http.MethodGet, "/api/export", "")
	suite.Require().Equal(http.StatusOK, export.Code)

	// feed the export body straight back as a replace import
	body := strings.Replace(export.Body.String(), `"version":1`, `"mode":"replace"`, 1)
	w := suite.request(http.MethodPost, "/api/import", body)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var result struct {
		Projects []dto.ProjectDTO `json:"projects"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &result))
	suite.Require().Len(result.Projects, 1)
	suite.Equal("Apollo", result.Projects[0].Name)
	suite.Len(result.Projects[0].Stakeholders, 1)
	suite.Require().Len(result.Projects[0].Plan, 1)
	suite.Equal("Build", result.Projects[0].Plan[0].Title)
	suite.Require().Len(result.Projects[0].RecentActivity, 1)
	suite.Equal("Sarah Chen", result.Projects[0].RecentActivity[0].Author)
}

func (suite *ProjectHandlerTestSuite) TestImportRejectsUnknownMode() {
	w := suite.request(http.MethodPost, "/api/import", `{"mode": "append", "projects": []}`)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestProjectHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectHandlerTestSuite))
}
