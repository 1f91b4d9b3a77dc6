package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
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

// PersonHandlerTestSuite defines the test suite for PersonHandler
type PersonHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *PersonHandlerTestSuite) SetupTest() {
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

	handler := NewPersonHandler(services.NewPersonService(suite.db))
	suite.router = gin.New()
	suite.router.GET("/api/people", handler.ListPeople)
	suite.router.POST("/api/people", handler.CreatePerson)
	suite.router.GET("/api/people/:id", handler.GetPerson)
	suite.router.PUT("/api/people/:id", handler.UpdatePerson)
	suite.router.DELETE("/api/people/:id", handler.DeletePerson)
}

// TearDownTest runs after each test
func (suite *PersonHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *PersonHandlerTestSuite) request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(encoded)
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

func (suite *PersonHandlerTestSuite) TestCreatePerson() {
	w := suite.request(http.MethodPost, "/api/people", gin.H{
		"name":  "Sarah Chen",
		"team":  "Design",
		"email": "sarah@example.com",
	})
	suite.Equal(http.StatusCreated, w.Code)

	var created dto.PersonDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &created))
	suite.Equal("Sarah Chen", created.Name)
	suite.Equal("Design", created.Team)
	suite.Require().NotNil(created.Email)
	suite.Equal("sarah@example.com", *created.Email)
	suite.NotEmpty(created.ID)
}

func (suite *PersonHandlerTestSuite) TestCreatePersonRequiresName() {
	w := suite.request(http.MethodPost, "/api/people", gin.H{"team": "Design"})
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *PersonHandlerTestSuite) TestCreatePersonIsIdempotent() {
	first := suite.request(http.MethodPost, "/api/people", gin.H{"name": "Sarah Chen"})
	suite.Equal(http.StatusCreated, first.Code)
	second := suite.request(http.MethodPost, "/api/people", gin.H{"name": "sarah chen"})
	suite.Equal(http.StatusCreated, second.Code)

	var a, b dto.PersonDTO
	suite.Require().NoError(json.Unmarshal(first.Body.Bytes(), &a))
	suite.Require().NoError(json.Unmarshal(second.Body.Bytes(), &b))
	suite.Equal(a.ID, b.ID)
}

func (suite *PersonHandlerTestSuite) TestGetPersonNotFound() {
	w := suite.request(http.MethodGet, "/api/people/person-missing", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *PersonHandlerTestSuite) TestListPeople() {
	suite.request(http.MethodPost, "/api/people", gin.H{"name": "Sarah Chen"})
	suite.request(http.MethodPost, "/api/people", gin.H{"name": "Marcus Rodriguez"})

	w := suite.request(http.MethodGet, "/api/people", nil)
	suite.Equal(http.StatusOK, w.Code)

	var people []dto.PersonDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &people))
	suite.Len(people, 2)
}

func (suite *PersonHandlerTestSuite) TestUpdatePersonConflict() {
	suite.request(http.MethodPost, "/api/people", gin.H{"name": "Sarah Chen"})
	created := suite.request(http.MethodPost, "/api/people", gin.H{"name": "Marcus Rodriguez"})

	var person dto.PersonDTO
	suite.Require().NoError(json.Unmarshal(created.Body.Bytes(), &person))

	w := suite.request(http.MethodPut, "/api/people/"+person.ID, gin.H{"name": "SARAH CHEN"})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *PersonHandlerTestSuite) TestUpdatePersonEmailConflict() {
	suite.request(http.MethodPost, "/api/people", gin.H{"name": "Sarah Chen", "email": "sarah@example.com"})
	created := suite.request(http.MethodPost, "/api/people", gin.H{"name": "Marcus Rodriguez"})

	var person dto.PersonDTO
	suite.Require().NoError(json.Unmarshal(created.Body.Bytes(), &person))

	w := suite.request(http.MethodPut, "/api/people/"+person.ID, gin.H{
		"name":  "Marcus Rodriguez",
		"email": "SARAH@example.com",
	})
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *PersonHandlerTestSuite) TestUpdatePerson() {
	created := suite.request(http.MethodPost, "/api/people", gin.H{"name": "Sarah Chen", "email": "sarah@example.com"})
	var person dto.PersonDTO
	suite.Require().NoError(json.Unmarshal(created.Body.Bytes(), &person))

	w := suite.request(http.MethodPut, "/api/people/"+person.ID, gin.H{"name": "Sarah Chen-Park", "team": "Platform"})
	suite.Equal(http.StatusOK, w.Code)

	var updated dto.PersonDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &updated))
	suite.Equal("Sarah Chen-Park", updated.Name)
	suite.Equal("Platform", updated.Team)
	// explicit update clears the omitted email
	suite.Nil(updated.Email)
}

func (suite *PersonHandlerTestSuite) TestDeletePerson() {
	created := suite.request(http.MethodPost, "/api/people", gin.H{"name": "Sarah Chen"})
	var person dto.PersonDTO
	suite.Require().NoError(json.Unmarshal(created.Body.Bytes(), &person))

	w := suite.request(http.MethodDelete, "/api/people/"+person.ID, nil)
	suite.Equal(http.StatusNoContent, w.Code)

	w = suite.request(http.MethodGet, "/api/people/"+person.ID, nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *PersonHandlerTestSuite) TestDeletePersonNotFound() {
	w := suite.request(http.MethodDelete, "/api/people/person-missing", nil)
	suite.Equal(http.StatusNotFound, w.Code)
}

func TestPersonHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(PersonHandlerTestSuite))
}
