package email

import "fmt"

// BeneficiaryAdded is sent when an owner designates a new beneficiary.
// No action is required from the recipient yet.
func BeneficiaryAdded(to, beneficiaryName, ownerName string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("You've been added as a beneficiary by %s", ownerName),
		HTML: fmt.Sprintf(`<html><body>
<h1>Beneficiary Notification</h1>
<p>Dear %s,</p>
<p><strong>%s</strong> has added you as a beneficiary in their legacy vault.</p>
<p>When the time comes, you will receive detailed instructions by email and
will need to verify your identity before accessing the vault.</p>
<p>No action is required from you at this time.</p>
</body></html>`, beneficiaryName, ownerName),
	}
}

// DMSTriggered carries the beneficiary's personal access key and the
// claim link once the owner's inactivity switch has fired.
func DMSTriggered(to, beneficiaryName, ownerName, accessKey, claimURL string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Important: Legacy Access from %s", ownerName),
		HTML: fmt.Sprintf(`<html><body>
<h1>Legacy Access Granted</h1>
<p>Dear %s,</p>
<p><strong>%s</strong> designated you as a beneficiary, and their digital
legacy is now ready to be claimed.</p>
<p>Your access key:</p>
<pre>%s</pre>
<p><a href="%s">Claim access now</a></p>
<p>You will be asked to complete identity verification. Keep this access
key secure and do not share it with anyone.</p>
</body></html>`, beneficiaryName, ownerName, accessKey, claimURL),
	}
}

// AccessGranted is sent after identity verification succeeds.
func AccessGranted(to, beneficiaryName, vaultURL string) Message {
	return Message{
		To:      to,
		Subject: "Identity Verified - Access Your Legacy Vault",
		HTML: fmt.Sprintf(`<html><body>
<h1>Identity Verified</h1>
<p>Dear %s,</p>
<p>Your identity has been verified. You can now open the vault:</p>
<p><a href="%s">Access Vault</a></p>
<p><em>You will need the decryption key the vault owner shared with you
to read the encrypted contents.</em></p>
</body></html>`, beneficiaryName, vaultURL),
	}
}
