package actor

import "testing"

func TestCreateRequestValidate(t *testing.T) {
	valid := CreateRequest{
		Email:       "tenant@example.com",
		DisplayName: "Terry Tenant",
		Password:    "correct-horse",
		Role:        RoleTenant,
	}

	tests := []struct {
		name    string
		mutate  func(r *CreateRequest)
		wantErr bool
	}{
		{"valid tenant", func(*CreateRequest) {}, false},
		{"valid landlord", func(r *CreateRequest) { r.Role = RoleLandlord }, false},
		{"missing email", func(r *CreateRequest) { r.Email = "" }, true},
		{"malformed email", func(r *CreateRequest) { r.Email = "not-an-email" }, true},
		{"missing name", func(r *CreateRequest) { r.DisplayName = "" }, true},
		{"missing password", func(r *CreateRequest) { r.Password = "" }, true},
		{"short password", func(r *CreateRequest) { r.Password = "short" }, true},
		{"unknown role", func(r *CreateRequest) { r.Role = "admin" }, true},
		{"empty role", func(r *CreateRequest) { r.Role = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			if err := req.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoginRequestValidate(t *testing.T) {
	if err := (&LoginRequest{Email: "a@b.co", Password: "pw"}).Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if err := (&LoginRequest{Password: "pw"}).Validate(); err == nil {
		t.Error("missing email must fail")
	}
	if err := (&LoginRequest{Email: "a@b.co"}).Validate(); err == nil {
		t.Error("missing password must fail")
	}
}
