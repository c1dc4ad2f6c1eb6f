package featureflags

import "testing"

func TestEnabled(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"1", true},
		{"true", true},
		{"TRUE", true},
		{"yes", true},
		{"on", true},
		{"0", false},
		{"false", false},
		{"off", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Setenv("FLAG_LOGIN_RATE_LIMIT", tc.value)
		if got := Enabled("login_rate_limit"); got != tc.want {
			t.Errorf("Enabled with %q = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestUnsetFlagDisabled(t *testing.T) {
	if Enabled("definitely_not_set_anywhere") {
		t.Fatal("unset flags must default to off")
	}
}
