package service

import (
	"time"

	"github.com/dom/musikkhylla/internal/domain"
	"github.com/google/uuid"
)

// DefaultAlbums is the starter collection for a user whose list is empty.
func DefaultAlbums() []domain.AlbumInput {
	return []domain.AlbumInput{
		starter("Abbey Road", "The Beatles", 1969,
			"https://via.placeholder.com/300x300/8B4513/FFFFFF?text=Abbey+Road",
			"https://open.spotify.com/album/0ETFjACtuP2ADo6LFhL6HN"),
		starter("Dark Side of the Moon", "Pink Floyd", 1973,
			"https://via.placeholder.com/300x300/000000/FFFFFF?text=Dark+Side",
			"https://open.spotify.com/album/4LH4d3cOWNNsVw41Gqt2kv"),
		starter("Nevermind", "Nirvana", 1991,
			"https://via.placeholder.com/300x300/4169E1/FFFFFF?text=Nevermind",
			"https://open.spotify.com/album/2UJcKiJxNryhL050F5Z1Fk"),
		starter("Back in Black", "AC/DC", 1980,
			"https://via.placeholder.com/300x300/000000/FFFFFF?text=Back+in+Black",
			"https://open.spotify.com/album/6mUdeDZCsExyJLMdAfDuwh"),
		starter("Thriller", "Michael Jackson", 1982,
			"https://via.placeholder.com/300x300/FF0000/FFFFFF?text=Thriller",
			"https://open.spotify.com/album/2ANVost0y2y52ema1E9xAZ"),
	}
}

// Apple Music and Tidal links are "#" placeholders the frontend renders disabled.
func starter(title, artist string, year int, cover, spotify string) domain.AlbumInput {
	placeholder := "#"
	return domain.AlbumInput{
		Title:         title,
		Artist:        artist,
		Year:          &year,
		CoverURL:      &cover,
		SpotifyURL:    &spotify,
		AppleMusicURL: &placeholder,
		TidalURL:      &placeholder,
	}
}

// seedAlbums stamps created_at one microsecond apart so ties sort stably.
func seedAlbums(userID uuid.UUID, now time.Time) []*domain.Album {
	defaults := DefaultAlbums()
	albums := make([]*domain.Album, len(defaults))
	for i, input := range defaults {
		albums[i] = newAlbum(userID, input, i, now.Add(time.Duration(i)*time.Microsecond))
	}
	return albums
}
