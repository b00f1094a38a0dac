package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
)

// Typed dispatch operations, one per domain event. Each assembles a fixed
// title/message pair and routes through Create; the (nil, nil) suppression
// contract applies to all of them. Names and payload keys are consumed by
// other subsystems; treat them as frozen.

// NotifyNewFollower tells an actor it gained a follower.
func (d *Dispatcher) NotifyNewFollower(ctx context.Context, recipient, follower domain.Actor, followerName string) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &follower,
		Type:      models.TypeNouveauFollower,
		Titre:     "Nouveau follower",
		Message:   fmt.Sprintf("%s vous suit désormais", followerName),
		Data:      map[string]any{"follower_id": follower.ID, "follower_type": string(follower.Kind)},
	})
}

// NotifySubscriptionRequested tells a societe that a user requested a
// subscription.
func (d *Dispatcher) NotifySubscriptionRequested(ctx context.Context, recipient, requester domain.Actor, requesterName string, abonnementID domain.AbonnementID) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &requester,
		Type:      models.TypeAbonnementDemande,
		Titre:     "Demande d'abonnement",
		Message:   fmt.Sprintf("%s souhaite s'abonner à vos services", requesterName),
		Data:      map[string]any{"abonnement_id": abonnementID.Int64()},
		DedupKey:  "abonnement_id",
	})
}

// NotifySubscriptionAccepted tells the requester the subscription was accepted.
func (d *Dispatcher) NotifySubscriptionAccepted(ctx context.Context, recipient, accepter domain.Actor, accepterName string, abonnementID domain.AbonnementID) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &accepter,
		Type:      models.TypeAbonnementAccepte,
		Titre:     "Abonnement accepté",
		Message:   fmt.Sprintf("%s a accepté votre demande d'abonnement", accepterName),
		Data:      map[string]any{"abonnement_id": abonnementID.Int64()},
		DedupKey:  "abonnement_id",
	})
}

// NotifySubscriptionRejected tells the requester the subscription was refused.
func (d *Dispatcher) NotifySubscriptionRejected(ctx context.Context, recipient, rejecter domain.Actor, rejecterName string, abonnementID domain.AbonnementID) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &rejecter,
		Type:      models.TypeAbonnementRejete,
		Titre:     "Abonnement refusé",
		Message:   fmt.Sprintf("%s a refusé votre demande d'abonnement", rejecterName),
		Data:      map[string]any{"abonnement_id": abonnementID.Int64()},
		DedupKey:  "abonnement_id",
	})
}

// NotifySubscriptionCancelled tells the other party the subscription ended.
func (d *Dispatcher) NotifySubscriptionCancelled(ctx context.Context, recipient, canceller domain.Actor, cancellerName string, abonnementID domain.AbonnementID) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &canceller,
		Type:      models.TypeAbonnementAnnule,
		Titre:     "Abonnement annulé",
		Message:   fmt.Sprintf("%s a mis fin à votre abonnement", cancellerName),
		Data:      map[string]any{"abonnement_id": abonnementID.Int64()},
		DedupKey:  "abonnement_id",
	})
}

// NotifyPartnershipPageCreated tells a party its partnership page is live.
func (d *Dispatcher) NotifyPartnershipPageCreated(ctx context.Context, recipient, actor domain.Actor, pageID domain.PageID, titre string) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &actor,
		Type:      models.TypePagePartenariatCreee,
		Titre:     "Page de partenariat créée",
		Message:   fmt.Sprintf("La page de partenariat \"%s\" est disponible", titre),
		Data:      map[string]any{"page_partenariat_id": pageID.Int64()},
		DedupKey:  "page_partenariat_id",
	})
}

// NotifyPartnerInfoAdded tells the opposite party that partner information
// was added to the shared page.
func (d *Dispatcher) NotifyPartnerInfoAdded(ctx context.Context, recipient, actor domain.Actor, pageID domain.PageID, nom string) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &actor,
		Type:      models.TypeInformationPartenaireAjoutee,
		Titre:     "Information partenaire ajoutée",
		Message:   fmt.Sprintf("%s a publié ses informations sur votre page de partenariat", nom),
		Data:      map[string]any{"page_partenariat_id": pageID.Int64()},
	})
}

// NotifyPartnerInfoUpdated tells the opposite party that partner information
// changed.
func (d *Dispatcher) NotifyPartnerInfoUpdated(ctx context.Context, recipient, actor domain.Actor, pageID domain.PageID, nom string) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &actor,
		Type:      models.TypeInformationPartenaireModifiee,
		Titre:     "Information partenaire modifiée",
		Message:   fmt.Sprintf("%s a mis à jour ses informations de partenariat", nom),
		Data:      map[string]any{"page_partenariat_id": pageID.Int64()},
	})
}

// NotifyTransactionPending asks the user side to validate a new transaction.
func (d *Dispatcher) NotifyTransactionPending(ctx context.Context, recipient, actor domain.Actor, transactionID domain.TransactionID, produit string, montant decimal.Decimal, devise string) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &actor,
		Type:      models.TypeTransactionEnAttente,
		Titre:     "Transaction en attente de validation",
		Message:   fmt.Sprintf("Une transaction de %s %s (%s) attend votre validation", montant.String(), devise, produit),
		Data:      map[string]any{"transaction_id": transactionID.Int64()},
		DedupKey:  "transaction_id",
	})
}

// NotifyTransactionValidated tells the societe its transaction was validated.
func (d *Dispatcher) NotifyTransactionValidated(ctx context.Context, recipient, actor domain.Actor, transactionID domain.TransactionID, produit string, montant decimal.Decimal, devise string) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &actor,
		Type:      models.TypeTransactionValidee,
		Titre:     "Transaction validée",
		Message:   fmt.Sprintf("Votre transaction de %s %s (%s) a été validée", montant.String(), devise, produit),
		Data:      map[string]any{"transaction_id": transactionID.Int64()},
		DedupKey:  "transaction_id",
	})
}

// NotifyTransactionRejected tells the societe its transaction was rejected.
func (d *Dispatcher) NotifyTransactionRejected(ctx context.Context, recipient, actor domain.Actor, transactionID domain.TransactionID, produit, commentaire string) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &actor,
		Type:      models.TypeTransactionRejetee,
		Titre:     "Transaction rejetée",
		Message:   fmt.Sprintf("Votre transaction (%s) a été rejetée : %s", produit, commentaire),
		Data:      map[string]any{"transaction_id": transactionID.Int64()},
		DedupKey:  "transaction_id",
	})
}

// NotifyTransactionUpdated tells the user side a pending transaction changed.
func (d *Dispatcher) NotifyTransactionUpdated(ctx context.Context, recipient, actor domain.Actor, transactionID domain.TransactionID, produit string) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &actor,
		Type:      models.TypeTransactionModifiee,
		Titre:     "Transaction modifiée",
		Message:   fmt.Sprintf("La transaction (%s) en attente de votre validation a été modifiée", produit),
		Data:      map[string]any{"transaction_id": transactionID.Int64()},
	})
}

// NotifyTransactionDeleted tells the user side a pending transaction was
// withdrawn.
func (d *Dispatcher) NotifyTransactionDeleted(ctx context.Context, recipient, actor domain.Actor, produit string) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &actor,
		Type:      models.TypeTransactionSupprimee,
		Titre:     "Transaction supprimée",
		Message:   fmt.Sprintf("La transaction (%s) a été retirée avant validation", produit),
	})
}

// NotifyNewMessage tells the recipient about a direct message.
func (d *Dispatcher) NotifyNewMessage(ctx context.Context, recipient, sender domain.Actor, senderName string, conversationID int64) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &sender,
		Type:      models.TypeNouveauMessage,
		Titre:     "Nouveau message",
		Message:   fmt.Sprintf("%s vous a envoyé un message", senderName),
		Data:      map[string]any{"conversation_id": conversationID},
		DedupKey:  "conversation_id",
	})
}

// NotifyGroupMessage tells a member about activity in a group conversation.
func (d *Dispatcher) NotifyGroupMessage(ctx context.Context, recipient, sender domain.Actor, senderName, groupName string, groupID int64) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &sender,
		Type:      models.TypeMessageGroupe,
		Titre:     "Message de groupe",
		Message:   fmt.Sprintf("%s a écrit dans le groupe %s", senderName, groupName),
		Data:      map[string]any{"groupe_id": groupID},
		DedupKey:  "groupe_id",
	})
}

// NotifyGroupInvitation invites the recipient to a group.
func (d *Dispatcher) NotifyGroupInvitation(ctx context.Context, recipient, inviter domain.Actor, inviterName, groupName string, groupID int64) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &inviter,
		Type:      models.TypeGroupeInvitation,
		Titre:     "Invitation à un groupe",
		Message:   fmt.Sprintf("%s vous invite à rejoindre le groupe %s", inviterName, groupName),
		Data:      map[string]any{"groupe_id": groupID},
		DedupKey:  "groupe_id",
	})
}

// NotifyPostLiked tells the author someone liked their post.
func (d *Dispatcher) NotifyPostLiked(ctx context.Context, recipient, liker domain.Actor, likerName string, postID int64) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &liker,
		Type:      models.TypePostLiked,
		Titre:     "Nouveau j'aime",
		Message:   fmt.Sprintf("%s a aimé votre publication", likerName),
		Data:      map[string]any{"post_id": postID},
		DedupKey:  "post_id",
	})
}

// NotifyPostCommented tells the author someone commented on their post.
func (d *Dispatcher) NotifyPostCommented(ctx context.Context, recipient, commenter domain.Actor, commenterName string, postID int64) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &commenter,
		Type:      models.TypePostCommented,
		Titre:     "Nouveau commentaire",
		Message:   fmt.Sprintf("%s a commenté votre publication", commenterName),
		Data:      map[string]any{"post_id": postID},
	})
}

// NotifyMention tells the recipient they were mentioned.
func (d *Dispatcher) NotifyMention(ctx context.Context, recipient, mentioner domain.Actor, mentionerName string, postID int64) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Actor:     &mentioner,
		Type:      models.TypeMention,
		Titre:     "Vous avez été mentionné",
		Message:   fmt.Sprintf("%s vous a mentionné dans une publication", mentionerName),
		Data:      map[string]any{"post_id": postID},
		DedupKey:  "post_id",
	})
}

// NotifySystem emits a generic system notice with a caller-supplied title
// and message. No actor is set, so the dedup check does not apply and
// repeated notices are delivered.
func (d *Dispatcher) NotifySystem(ctx context.Context, recipient domain.Actor, titre, message string, data map[string]any) (*models.Notification, error) {
	return d.Create(ctx, CreateInput{
		Recipient: recipient,
		Type:      models.TypeSystem,
		Titre:     titre,
		Message:   message,
		Data:      data,
	})
}
