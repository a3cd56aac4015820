// Package main provides localization for the vidmark CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Spanish translations for CLI messages.
	l10n.Register("es", l10n.LexiconMap{
		// Root command
		"Review videos and record animal behaviour annotations.": "Revisa vídeos y registra anotaciones de comportamiento animal.",

		// Version command
		"vidmark version %s": "vidmark versión %s",
		"ffmpeg: %s":         "ffmpeg: %s",
		"ffmpeg: not found, only synthetic clips can be played": "ffmpeg: no encontrado, solo se pueden reproducir clips sintéticos",

		// Console messages
		"error: %v":                                         "error: %v",
		"Playing":                                           "Reproduciendo",
		"Paused":                                            "En pausa",
		"Discarded open state %s":                           "Estado abierto %s descartado",
		"Recorded %s":                                       "Registrado %s",
		"State %s opened at %s":                             "Estado %s abierto en %s",
		"Records written to %s":                             "Registros escritos en %s",
		"Speed %.2fx (choices: %s)":                         "Velocidad %.2fx (opciones: %s)",
		"No records yet.":                                   "Todavía no hay registros.",
		"State %s is still open and is not saved":           "El estado %s sigue abierto y no se guarda",
		"%d unsaved records kept for the next review of %s": "%d registros sin guardar conservados para la próxima revisión de %s",
		"Restored %d unsaved records":                       "Restaurados %d registros sin guardar",
		"Resuming at %s":                                    "Continuando en %s",
		"The journal is empty.":                             "El diario está vacío.",

		// Tables
		"Field":        "Campo",
		"Value":        "Valor",
		"Video":        "Vídeo",
		"State":        "Estado",
		"Position":     "Posición",
		"Speed":        "Velocidad",
		"Loops":        "Vueltas",
		"Frames":       "Fotogramas",
		"Open state":   "Estado abierto",
		"Records":      "Registros",
		"Type":         "Tipo",
		"Behaviour":    "Comportamiento",
		"Role":         "Rol",
		"Start":        "Inicio",
		"End":          "Fin",
		"Duration":     "Duración",
		"Tag":          "Etiqueta",
		"Observations": "Observaciones",
		"File":         "Archivo",
		"Codec":        "Códec",
		"Size":         "Tamaño",
		"Frame rate":   "Fotogramas por segundo",
		"Timescale":    "Escala de tiempo",
		"Fragmented":   "Fragmentado",
		"yes":          "sí",
		"no":           "no",
		"Command":      "Comando",
		"Arguments":    "Argumentos",
		"Description":  "Descripción",
		"Updated":      "Actualizado",

		// Console help
		"Resume playback":                     "Reanudar la reproducción",
		"Pause playback":                      "Pausar la reproducción",
		"Toggle play and pause":               "Alternar reproducción y pausa",
		"Jump to a position":                  "Saltar a una posición",
		"Show or set the playback speed":      "Mostrar o cambiar la velocidad",
		"Open the next video":                 "Abrir el vídeo siguiente",
		"Open the previous video":             "Abrir el vídeo anterior",
		"Open video n of the list":            "Abrir el vídeo n de la lista",
		"List the videos":                     "Listar los vídeos",
		"Show the playback state":             "Mostrar el estado de reproducción",
		"Record an instantaneous behaviour":   "Registrar un comportamiento instantáneo",
		"Open or close a lasting behaviour":   "Abrir o cerrar un comportamiento duradero",
		"Discard the open state":              "Descartar el estado abierto",
		"List the records of this video":      "Listar los registros de este vídeo",
		"Summarise the records per behaviour": "Resumir los registros por comportamiento",
		"Write the records as CSV":            "Guardar los registros como CSV",
		"List videos with unsaved records":    "Listar vídeos con registros sin guardar",
		"Save the current frame as PNG":       "Guardar el fotograma actual como PNG",
		"Show this help":                      "Mostrar esta ayuda",
		"Leave vidmark":                       "Salir de vidmark",
	})
}
