package tokens

import (
	"strconv"

	"github.com/dmitrijs2005/gophsession/internal/client/models"
	"github.com/dmitrijs2005/gophsession/internal/common"
)

var keys = []string{common.AccessTokenKey, common.RefreshTokenKey, common.TokenTypeKey, common.ExpiresInKey}

func encode(p models.TokenPair) map[string]string {
	return map[string]string{
		common.AccessTokenKey:  p.AccessToken,
		common.RefreshTokenKey: p.RefreshToken,
		common.TokenTypeKey:    p.TokenType,
		common.ExpiresInKey:    strconv.FormatInt(p.ExpiresIn, 10),
	}
}

// decode returns nil unless both tokens are present. The advisory fields
// tolerate garbage.
func decode(m map[string]string) *models.TokenPair {
	p := models.TokenPair{
		AccessToken:  m[common.AccessTokenKey],
		RefreshToken: m[common.RefreshTokenKey],
		TokenType:    m[common.TokenTypeKey],
	}
	if !p.Complete() {
		return nil
	}
	if p.TokenType == "" {
		p.TokenType = common.DefaultTokenType
	}
	p.ExpiresIn, _ = strconv.ParseInt(m[common.ExpiresInKey], 10, 64)
	return &p
}
