package routes

import "github.com/MrEthical07/goGuard/permission"

// Well-known destination names referenced by the guard.
const (
	AdminLogin        = "adminLogin"
	LecturerLogin     = "lecturerLogin"
	StudentLogin      = "studentLogin"
	AdminDashboard    = "adminDashboard"
	LecturerDashboard = "lecturerDashboard"
	StudentDashboard  = "studentDashboard"
	NotFound          = "404"
)

func guestOnly(name, path string) Destination {
	return Destination{Name: name, Path: path, Requirement: Requirement{RequiresGuest: true}}
}

func authOnly(name, path string, roles ...permission.Role) Destination {
	return Destination{Name: name, Path: path, Requirement: Requirement{
		RequiresAuth: true,
		Roles:        permission.NewRoleSet(roles...),
	}}
}

// PortalDestinations returns the page set of the school portal.
func PortalDestinations() []Destination {
	admin := permission.RoleAdmin
	lecturer := permission.RoleLecturer
	student := permission.RoleStudent

	return []Destination{
		guestOnly(AdminLogin, "/admin/login"),
		guestOnly(LecturerLogin, "/lecturer/login"),
		guestOnly(StudentLogin, "/login"),
		guestOnly("studentSignup", "/signup"),
		guestOnly("recover-password", "/recover-password"),
		guestOnly("recover-password-email", "/recover-password-email"),

		authOnly(AdminDashboard, "/admin/dashboard", admin),
		authOnly("faculties", "/admin/faculties", admin),
		authOnly("departments", "/admin/departments", admin),
		authOnly("admin-courses", "/admin/admin-courses", admin),
		authOnly("my-lecturers", "/admin/my-lecturers", admin),
		authOnly("students", "/admin/students", admin),
		authOnly("admin-schedules", "/admin/schedules", admin),

		authOnly(LecturerDashboard, "/lecturer/dashboard", lecturer),
		authOnly("courses", "/lecturer/courses", lecturer),
		authOnly("schedules", "/lecturer/schedules", lecturer),

		authOnly(StudentDashboard, "/student/dashboard", student),

		{Name: NotFound, Path: "/404"},
	}
}

// Default returns the portal route table.
func Default() *Table {
	return MustTable(PortalDestinations()...)
}
