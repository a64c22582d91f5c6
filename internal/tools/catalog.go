// Package tools implements the exposed tool surface: the catalog of tool
// descriptors, the task/client/analytics managers behind them and the
// dispatcher that routes invocations by name.
package tools

// Definition describes one invocable tool.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// Catalog returns the descriptors for every exposed tool.
func Catalog() []Definition {
	return []Definition{
		{
			Name:        "crear_tarea_inteligente",
			Description: "Crea una nueva tarea con análisis inteligente de contexto",
			InputSchema: objectSchema(map[string]any{
				"descripcion": stringProp("Descripción en lenguaje natural de la tarea"),
				"proyecto_id": stringProp("ID del proyecto o tablero"),
				"asignar_a":   stringProp("Usuario sugerido para la asignación"),
				"prioridad":   enumProp("Prioridad explícita", "baja", "media", "alta", "critica"),
			}, "descripcion", "proyecto_id"),
		},
		{
			Name:        "buscar_tareas_semantica",
			Description: "Búsqueda avanzada de tareas usando comprensión natural",
			InputSchema: objectSchema(map[string]any{
				"query":   stringProp("Consulta en lenguaje natural"),
				"filtros": map[string]any{"type": "object", "description": "Filtros adicionales (estado, asignado_a)"},
				"limite":  map[string]any{"type": "integer", "description": "Máximo de resultados"},
			}, "query"),
		},
		{
			Name:        "actualizar_tarea_contextual",
			Description: "Actualiza una tarea validando el contexto y las transiciones de estado",
			InputSchema: objectSchema(map[string]any{
				"tarea_id":              map[string]any{"type": "integer", "description": "ID de la tarea"},
				"cambios":               map[string]any{"type": "object", "description": "Campos a modificar"},
				"comentario_automatico": map[string]any{"type": "boolean", "description": "Agregar comentario con el resumen del cambio"},
			}, "tarea_id", "cambios"),
		},
		{
			Name:        "buscar_cliente_inteligente",
			Description: "Búsqueda de clientes con scoring de coincidencia",
			InputSchema: objectSchema(map[string]any{
				"query":  stringProp("Nombre o término de búsqueda"),
				"limite": map[string]any{"type": "integer", "description": "Máximo de resultados"},
			}, "query"),
		},
		{
			Name:        "obtener_historial_cliente",
			Description: "Historial de interacciones y métricas de un cliente",
			InputSchema: objectSchema(map[string]any{
				"cliente_id": stringProp("UID del cliente"),
			}, "cliente_id"),
		},
		{
			Name:        "analizar_productividad_equipo",
			Description: "Análisis completo de productividad del equipo",
			InputSchema: objectSchema(map[string]any{
				"periodo":               enumProp("Período a analizar", "ultima_semana", "ultimo_mes", "ultimo_trimestre"),
				"incluir_predicciones":  map[string]any{"type": "boolean"},
				"desglosar_por_usuario": map[string]any{"type": "boolean"},
			}),
		},
		{
			Name:        "detectar_cuellos_botella",
			Description: "Identifica cuellos de botella en los flujos de trabajo",
			InputSchema: objectSchema(map[string]any{
				"proyecto_id":             stringProp("Proyecto a analizar; vacío para todos"),
				"incluir_recomendaciones": map[string]any{"type": "boolean"},
			}),
		},
		{
			Name:        "generar_reporte_proyecto",
			Description: "Genera un reporte de estado y métricas de un proyecto",
			InputSchema: objectSchema(map[string]any{
				"proyecto_id": stringProp("ID del proyecto"),
				"formato":     enumProp("Formato del reporte", "ejecutivo", "detallado", "tecnico"),
			}, "proyecto_id"),
		},
		{
			Name:        "gestionar_usuarios",
			Description: "Administración de usuarios del equipo",
			InputSchema: objectSchema(map[string]any{
				"accion":  enumProp("Acción a ejecutar", "crear", "actualizar", "desactivar"),
				"usuario": map[string]any{"type": "object", "description": "Datos del usuario"},
			}, "accion"),
		},
		{
			Name:        "exportar_datos",
			Description: "Exportación de datos de tareas y clientes",
			InputSchema: objectSchema(map[string]any{
				"formato": enumProp("Formato de exportación", "json", "csv"),
				"alcance": stringProp("Conjunto de datos a exportar"),
			}, "formato"),
		},
	}
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func enumProp(description string, values ...string) map[string]any {
	return map[string]any{"type": "string", "description": description, "enum": values}
}
