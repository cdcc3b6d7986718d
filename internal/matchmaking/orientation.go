// internal/matchmaking/orientation.go

package matchmaking

import (
    "github.com/amouradev/amoura-backend/internal/profile"
)

// reciprocityRule maps a viewer's gender to the gender their candidates
// must have. ok=false means the orientation matches no candidates.
type reciprocityRule func(viewerGender string) (candidateGender string, ok bool)

// orientationReciprocity is the full matching policy, one entry per
// supported orientation. Orientations absent from the table yield an
// empty compatible set rather than an error.
var orientationReciprocity = map[string]reciprocityRule{
    profile.OrientationGay: func(viewerGender string) (string, bool) {
        return viewerGender, true
    },
    profile.OrientationLesbian: func(string) (string, bool) {
        return profile.GenderFemale, true
    },
    profile.OrientationStraight: func(viewerGender string) (string, bool) {
        return oppositeGender(viewerGender)
    },
}

// RequiredCandidateGender resolves the orientation/gender reciprocity
// rule for a viewer. ok=false means no candidate can match.
func RequiredCandidateGender(orientation, viewerGender string) (string, bool) {
    rule, found := orientationReciprocity[orientation]
    if !found {
        return "", false
    }
    return rule(viewerGender)
}

func oppositeGender(gender string) (string, bool) {
    switch gender {
    case profile.GenderMale:
        return profile.GenderFemale, true
    case profile.GenderFemale:
        return profile.GenderMale, true
    default:
        return "", false
    }
}
