package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("es", l10n.LexiconMap{
		// Playback controller
		"Playing %s":                              "Reproduciendo %s",
		"Failed to open %s: %v":                   "No se pudo abrir %s: %v",
		"Worker for %s did not stop within %s":    "El worker de %s no se detuvo en %s",
		"Session %s closed":                       "Sesión %s cerrada",
		"Ignoring non-positive speed %v":          "Se ignora la velocidad no positiva %v",
		"Event channel full, eof delayed":         "Canal de eventos lleno, fin de vídeo aplazado",

		// Playback worker
		"Opened %s: %dx%d, %.3f fps, %d frames":           "Abierto %s: %dx%d, %.3f fps, %d fotogramas",
		"Skipping unreadable frame in %s: %v":             "Se omite un fotograma ilegible en %s: %v",
		"Recovered from decode failure in %s: %v":         "Recuperado de un fallo de decodificación en %s: %v",
		"Seek to %.3fs failed: %v":                        "Falló el salto a %.3fs: %v",
		"Rewind of %s failed: %v":                         "Falló el rebobinado de %s: %v",
		"Closing %s failed: %v":                           "Falló el cierre de %s: %v",
		"Worker for %s stopped (%d emitted, %d dropped)":  "Worker de %s detenido (%d emitidos, %d descartados)",

		// Sources
		"Opening %s with %s backend":       "Abriendo %s con el backend %s",
		"Decoding %s (%s, %dx%d) with %s":  "Decodificando %s (%s, %dx%d) con %s",
		"ffmpeg finished %s: %s":           "ffmpeg terminó %s: %s",

		// Annotation export
		"Saved %d records to %s":             "%d registros guardados en %s",
		"Releasing lock in %s failed: %v":    "Falló la liberación del bloqueo en %s: %v",

		// CLI
		"Interrupted, shutting down...":              "Interrumpido, cerrando...",
		"Loaded %d videos from %s":                   "%d vídeos cargados desde %s",
		"Snapshot saved to %s":                       "Captura guardada en %s",
		"Summary saved to %s":                        "Resumen guardado en %s",
		"Unsaved records for %s kept in the journal": "Registros sin guardar de %s conservados en el diario",
		"Reading the journal for %s failed: %v":      "Falló la lectura del diario de %s: %v",
		"Updating the journal for %s failed: %v":     "Falló la actualización del diario de %s: %v",
	})
}
