package main

import "testing"

func TestErrNoPrivilegeListsAlternatives(t *testing.T) {
	err := errNoPrivilege("apt-get", []string{"psycopg2-binary"})
	want := "apt-get requires elevated privileges, none available; consider psycopg2-binary instead"
	if err.Error() != want {
		t.Errorf("errNoPrivilege() = %q, want %q", err.Error(), want)
	}
}

func TestErrNoPrivilegeWithoutAlternatives(t *testing.T) {
	err := errNoPrivilege("apt-get", nil)
	want := "apt-get requires elevated privileges, none available"
	if err.Error() != want {
		t.Errorf("errNoPrivilege() = %q, want %q", err.Error(), want)
	}
}
