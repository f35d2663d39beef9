package auth_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/dealflow-engine/auth"
)

var secret = []byte("test-secret")

func TestDecode_RoundTrip(t *testing.T) {
	token, err := auth.Sign(auth.AuthContext{CompanyID: "co-1", UserID: "u-1"}, secret, time.Hour)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	ac, err := auth.Decode(token, secret)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if ac.CompanyID != "co-1" || ac.UserID != "u-1" {
		t.Errorf("unexpected context %+v", ac)
	}
}

func TestDecode_Rejections(t *testing.T) {
	expired, _ := auth.Sign(auth.AuthContext{CompanyID: "co", UserID: "u"}, secret, -time.Minute)
	missing, _ := auth.Sign(auth.AuthContext{CompanyID: "co"}, secret, time.Hour)
	wrongKey, _ := auth.Sign(auth.AuthContext{CompanyID: "co", UserID: "u"}, []byte("other"), time.Hour)

	cases := []struct {
		name  string
		token string
		want  error
	}{
		{"garbage", "not.a.token", auth.ErrInvalidToken},
		{"expired", expired, auth.ErrInvalidToken},
		{"wrong key", wrongKey, auth.ErrInvalidToken},
		{"missing claims", missing, auth.ErrMissingClaims},
	}

	for _, tc := range cases {
		if _, err := auth.Decode(tc.token, secret); !errors.Is(err, tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}
