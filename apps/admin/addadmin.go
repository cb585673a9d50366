package main

import (
	"context"

	"github.com/tkabange/uangalizi/core"
	"github.com/tkabange/uangalizi/core/staff"
)

// addAdmin updates or creates an admin staff.Staff
func (cli *commandLine) addAdmin(name, email, pwd string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	stf, err := cli.staffRepo.GetStaffByEmail(ctx, email)
	if err != nil {
		if err != staff.ErrNotFound {
			return err
		}
		stf = staff.Staff{
			Name:  name,
			Email: email,
		}
	}
	stf.Name = name
	stf.Role = staff.RoleAdmin
	stf.IsActive = true
	if err := stf.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.staffRepo.UpdateOrCreateStaff(ctx, stf); err != nil {
		return err
	}
	return nil
}
