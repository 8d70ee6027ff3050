package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/learning-service/internal/models"
)

func datatypesPermissions(p models.AdminPermissions) datatypes.JSONType[models.AdminPermissions] {
	return datatypes.NewJSONType(p)
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%go%", ContainsPattern("Go"))
	assert.Equal(t, `%100\%%`, ContainsPattern("100%"))
	assert.Equal(t, `%a\_b%`, ContainsPattern("a_b"))
	assert.Equal(t, `%c:\\dir%`, ContainsPattern(`C:\dir`))
}
