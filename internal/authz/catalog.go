package authz

// newRoleMatrix builds the fixed role to permission-set mapping. Every role
// appears exactly once; guest carries the smallest set and super_admin the
// full catalog.
func newRoleMatrix() map[Role]PermissionSet {
	matrix := map[Role]PermissionSet{
		RoleGuest: setOf(
			PermReadTasks,
			PermReadProjects,
		),
		RoleUser: setOf(
			PermReadTasks,
			PermReadClients,
			PermReadProjects,
			PermReadComments,
			PermCreateTasks,
			PermUpdateTasks,
			PermCreateComments,
			PermUpdateComments,
			PermUseAIFeatures,
		),
		RoleMember: setOf(
			PermReadTasks,
			PermReadClients,
			PermReadProjects,
			PermReadComments,
			PermReadAnalytics,
			PermCreateTasks,
			PermUpdateTasks,
			PermAssignTasks,
			PermCreateComments,
			PermUpdateComments,
			PermDeleteComments,
			PermUseAIFeatures,
			PermAccessAnalytics,
			PermExportData,
		),
		RoleDeveloper: setOf(
			PermReadTasks,
			PermReadClients,
			PermReadProjects,
			PermReadComments,
			PermReadAnalytics,
			PermCreateTasks,
			PermUpdateTasks,
			PermDeleteTasks,
			PermAssignTasks,
			PermCreateComments,
			PermUpdateComments,
			PermDeleteComments,
			PermUseAIFeatures,
			PermAccessAnalytics,
			PermExportData,
			PermImportData,
			PermAccessDebugInfo,
		),
		RoleProjectManager: setOf(
			PermReadTasks,
			PermReadClients,
			PermReadProjects,
			PermReadUsers,
			PermReadAnalytics,
			PermReadComments,
			PermCreateTasks,
			PermUpdateTasks,
			PermDeleteTasks,
			PermAssignTasks,
			PermCreateProjects,
			PermUpdateProjects,
			PermManageProjectMembers,
			PermCreateComments,
			PermUpdateComments,
			PermDeleteComments,
			PermModerateComments,
			PermUseAIFeatures,
			PermAccessAnalytics,
			PermExportData,
			PermImportData,
		),
		RoleTeamLead: setOf(
			PermReadTasks,
			PermReadClients,
			PermReadProjects,
			PermReadUsers,
			PermReadAnalytics,
			PermReadComments,
			PermCreateTasks,
			PermUpdateTasks,
			PermDeleteTasks,
			PermAssignTasks,
			PermUpdateProjects,
			PermManageProjectMembers,
			PermCreateComments,
			PermUpdateComments,
			PermDeleteComments,
			PermModerateComments,
			PermUseAIFeatures,
			PermAccessAnalytics,
			PermExportData,
			PermManageUsers,
		),
		RoleAdmin:      fullSet(),
		RoleSuperAdmin: fullSet(),
	}

	// Designer and QA share the developer profile minus debug access; the
	// account manager mirrors member plus client management.
	designer := matrix[RoleDeveloper].Clone()
	delete(designer, PermAccessDebugInfo)
	matrix[RoleDesigner] = designer
	matrix[RoleQATester] = designer.Clone()

	accountManager := matrix[RoleMember].Clone()
	accountManager.Add(PermCreateClients)
	accountManager.Add(PermUpdateClients)
	accountManager.Add(PermReadUsers)
	matrix[RoleAccountManager] = accountManager

	systemAdmin := fullSet()
	delete(systemAdmin, PermImpersonateUser)
	matrix[RoleSystemAdmin] = systemAdmin

	// admin is deliberately not super_admin: the three elevated permissions
	// are reachable only through super_admin or an explicit direct grant.
	delete(matrix[RoleAdmin], PermImpersonateUser)
	delete(matrix[RoleAdmin], PermManageSystemConfig)
	delete(matrix[RoleAdmin], PermViewSystemLogs)

	return matrix
}

// roleHierarchy ranks roles for role-assignment authorization. The level is
// independent of permission-set size.
var roleHierarchy = map[Role]int{
	RoleGuest:          0,
	RoleUser:           1,
	RoleMember:         2,
	RoleDeveloper:      3,
	RoleDesigner:       3,
	RoleQATester:       3,
	RoleProjectManager: 4,
	RoleAccountManager: 4,
	RoleTeamLead:       5,
	RoleAdmin:          8,
	RoleSystemAdmin:    9,
	RoleSuperAdmin:     10,
}

// toolPermissions maps each exposed tool to the permissions that may unlock
// it. A tool absent from this table is allowed unconditionally; holding any
// one of the listed permissions is sufficient.
var toolPermissions = map[string][]Permission{
	"crear_tarea_inteligente":      {PermCreateTasks, PermUseAIFeatures},
	"buscar_tareas_semantica":      {PermReadTasks, PermUseAIFeatures},
	"actualizar_tarea_contextual":  {PermUpdateTasks},
	"buscar_cliente_inteligente":   {PermReadClients},
	"obtener_historial_cliente":    {PermReadClients, PermReadAnalytics},
	"analizar_productividad_equipo": {PermAccessAnalytics},
	"detectar_cuellos_botella":     {PermAccessAnalytics},
	"generar_reporte_proyecto":     {PermReadProjects, PermAccessAnalytics},
	"gestionar_usuarios":           {PermManageUsers},
	"exportar_datos":               {PermExportData},
}

func setOf(perms ...Permission) PermissionSet {
	set := make(PermissionSet, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func fullSet() PermissionSet {
	return setOf(AllPermissions()...)
}
