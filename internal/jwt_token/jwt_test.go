package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/suite"

	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
)

// =============================================================================
// JWTService
// =============================================================================
//
// Justification for unit tests:
// Every authenticated route trusts the actor that ValidateToken extracts, so
// the round trip, the expiry handling and the rejection of system-kind and
// malformed identities are the security boundary of the whole API.

type JWTServiceSuite struct {
	suite.Suite
	service *JWTService
}

func TestJWTServiceSuite(t *testing.T) {
	suite.Run(t, new(JWTServiceSuite))
}

func (s *JWTServiceSuite) SetupTest() {
	s.service = NewJWTService("test-signing-key", "kolabo", "kolabo-api")
}

func (s *JWTServiceSuite) TestRoundTrip() {
	s.Run("user actor survives generate and validate", func() {
		token, err := s.service.GenerateAccessToken(domain.UserActor(7), time.Hour)
		s.Require().NoError(err)
		s.Require().NotEmpty(token)

		actor, err := s.service.ValidateToken(token)
		s.Require().NoError(err)
		s.Equal(domain.UserActor(7), actor)
	})

	s.Run("societe actor keeps its kind", func() {
		token, err := s.service.GenerateAccessToken(domain.SocieteActor(12), time.Hour)
		s.Require().NoError(err)

		actor, err := s.service.ValidateToken(token)
		s.Require().NoError(err)
		s.True(actor.IsSociete())
		s.Equal(int64(12), actor.ID)
	})
}

func (s *JWTServiceSuite) TestRejections() {
	s.Run("expired token", func() {
		token, err := s.service.GenerateAccessToken(domain.UserActor(7), -time.Minute)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Contains(err.Error(), "expired")
	})

	s.Run("garbage token", func() {
		_, err := s.service.ValidateToken("not.a.token")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("wrong signing key", func() {
		other := NewJWTService("another-key", "kolabo", "kolabo-api")
		token, err := other.GenerateAccessToken(domain.UserActor(7), time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("wrong signing method", func() {
		// An unsigned token never reaches the claims check.
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ActorID: 7, ActorKind: string(domain.KindUser)})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("system kind is never a caller", func() {
		token, err := s.service.GenerateAccessToken(domain.SystemActor, time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("zero actor id", func() {
		token, err := s.service.GenerateAccessToken(domain.NewActor(0, domain.KindUser), time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("unknown kind", func() {
		token, err := s.service.GenerateAccessToken(domain.NewActor(7, "ROBOT"), time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
